package parse_test

import (
	"testing"

	"github.com/banderson/issueops/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const solutionJSON = `{
  "analysis": "off-by-one in pagination",
  "files": ["internal/page.go"],
  "solution": "clamp the page index before slicing",
  "changes": [
    {"file": "internal/page.go", "original": "i <= last", "replacement": "i < last"}
  ],
  "commitMessage": "Fix pagination off-by-one"
}`

func TestSolution_BareObject(t *testing.T) {
	solution, err := parse.Solution(solutionJSON)

	require.NoError(t, err)
	assert.Equal(t, "off-by-one in pagination", solution.Analysis)
	assert.Equal(t, []string{"internal/page.go"}, solution.Files)
	require.Len(t, solution.Changes, 1)
	require.NotNil(t, solution.Changes[0].Original)
	assert.Equal(t, "i <= last", *solution.Changes[0].Original)
	assert.Equal(t, "Fix pagination off-by-one", solution.CommitMessage)
}

func TestSolution_FencedMatchesBare(t *testing.T) {
	fenced := "```json\n" + solutionJSON + "\n```"

	fromFenced, err := parse.Solution(fenced)
	require.NoError(t, err)

	fromBare, err := parse.Solution(solutionJSON)
	require.NoError(t, err)

	assert.Equal(t, fromBare, fromFenced)
}

func TestSolution_EmbeddedInProse(t *testing.T) {
	raw := "Here is what I found.\n\n" + solutionJSON + "\n\nLet me know if this helps."

	solution, err := parse.Solution(raw)

	require.NoError(t, err)
	assert.Equal(t, "Fix pagination off-by-one", solution.CommitMessage)
}

func TestSolution_BraceMatchingIgnoresBracesInStrings(t *testing.T) {
	raw := `The fix is below.
{"analysis":"func main() { panic(\"{\") } needs a guard","files":["main.go"],"solution":"add guard","changes":[],"commitMessage":"Add guard"}
Done.`

	solution, err := parse.Solution(raw)

	require.NoError(t, err)
	assert.Equal(t, "Add guard", solution.CommitMessage)
	assert.Contains(t, solution.Analysis, `panic("{")`)
}

func TestSolution_AbsentOriginalIsNil(t *testing.T) {
	raw := `{"analysis":"a","files":["f"],"solution":"s","changes":[{"file":"f","replacement":"whole file"}],"commitMessage":"m"}`

	solution, err := parse.Solution(raw)

	require.NoError(t, err)
	require.Len(t, solution.Changes, 1)
	assert.Nil(t, solution.Changes[0].Original)
}

func TestSolution_Malformed(t *testing.T) {
	_, err := parse.Solution("I could not produce a fix, sorry.")

	require.Error(t, err)
	assert.ErrorIs(t, err, parse.ErrMalformedSolution)
}

func TestExtractJSONObject_FencedBlock(t *testing.T) {
	raw := "Sure!\n```json\n{\"a\":1}\n```\nthanks"
	assert.Equal(t, `{"a":1}`, parse.ExtractJSONObject(raw))
}

func TestExtractJSONObject_NestedBraces(t *testing.T) {
	raw := `prefix {"outer":{"inner":{"deep":1}}} suffix`
	assert.Equal(t, `{"outer":{"inner":{"deep":1}}}`, parse.ExtractJSONObject(raw))
}

func TestExtractJSONObject_RawFallback(t *testing.T) {
	assert.Equal(t, "[1,2,3]", parse.ExtractJSONObject("  [1,2,3]  "))
}
