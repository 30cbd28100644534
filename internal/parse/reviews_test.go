package parse_test

import (
	"testing"

	"github.com/banderson/issueops/internal/domain"
	"github.com/banderson/issueops/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewComments_ValidArray(t *testing.T) {
	raw := `[{"line":5,"comment":"ok"},{"line":12,"comment":"also ok"}]`

	comments := parse.ReviewComments(raw)

	require.Len(t, comments, 2)
	assert.Equal(t, domain.ReviewComment{Line: 5, Comment: "ok"}, comments[0])
	assert.Equal(t, domain.ReviewComment{Line: 12, Comment: "also ok"}, comments[1])
}

func TestReviewComments_DropsInvalidEntries(t *testing.T) {
	raw := `[{"line":5,"comment":"ok"}, {"line":-1,"comment":"bad"}, {"foo":1}]`

	comments := parse.ReviewComments(raw)

	require.Len(t, comments, 1)
	assert.Equal(t, 5, comments[0].Line)
	assert.Equal(t, "ok", comments[0].Comment)
}

func TestReviewComments_DropsNonObjectElements(t *testing.T) {
	raw := `["stray text", 42, {"line":3,"comment":"kept"}, null]`

	comments := parse.ReviewComments(raw)

	require.Len(t, comments, 1)
	assert.Equal(t, 3, comments[0].Line)
}

func TestReviewComments_DropsEmptyComment(t *testing.T) {
	raw := `[{"line":7,"comment":""}]`

	comments := parse.ReviewComments(raw)

	require.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestReviewComments_NotJSON(t *testing.T) {
	assert.Nil(t, parse.ReviewComments("not json"))
}

func TestReviewComments_NotAnArray(t *testing.T) {
	assert.Nil(t, parse.ReviewComments(`{"line":5,"comment":"ok"}`))
}

func TestReviewComments_PreservesOrder(t *testing.T) {
	raw := `[{"line":30,"comment":"third"},{"line":10,"comment":"first"},{"line":20,"comment":"second"}]`

	comments := parse.ReviewComments(raw)

	require.Len(t, comments, 3)
	assert.Equal(t, []int{30, 10, 20}, []int{comments[0].Line, comments[1].Line, comments[2].Line})
}
