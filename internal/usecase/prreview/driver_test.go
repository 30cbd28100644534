package prreview_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/banderson/issueops/internal/domain"
	"github.com/banderson/issueops/internal/usecase/prreview"
	gh "github.com/google/go-github/v59/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simplePatch = `--- a/main.go
+++ b/main.go
@@ -1,3 +1,3 @@
 package main
-var x = 1
+var x = 2
`

// postedComment captures one CreateReviewComment call.
type postedComment struct {
	Path     string
	Body     string
	Position int
}

// MockTracker serves a fixed PR and records posted comments.
type MockTracker struct {
	PR       domain.PullRequest
	PRErr    error
	Files    []domain.PullRequestFile
	FilesErr error

	// CommentErrs maps a comment body to the error posting it should return.
	CommentErrs map[string]error
	Posted      []postedComment
}

func (m *MockTracker) GetPullRequest(_ context.Context, _ int) (domain.PullRequest, error) {
	return m.PR, m.PRErr
}

func (m *MockTracker) ListPullRequestFiles(_ context.Context, _ int) ([]domain.PullRequestFile, error) {
	return m.Files, m.FilesErr
}

func (m *MockTracker) CreateReviewComment(_ context.Context, _ int, _ string, path, body string, position int) error {
	if err, ok := m.CommentErrs[body]; ok {
		return err
	}
	m.Posted = append(m.Posted, postedComment{Path: path, Body: body, Position: position})
	return nil
}

// MockCompleter returns one canned reply per file path.
type MockCompleter struct {
	Replies map[string]string
	Err     error
}

func (m *MockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	for path, reply := range m.Replies {
		if strings.Contains(prompt, "File: "+path+"\n") {
			return reply, nil
		}
	}
	return "[]", nil
}

type nopLogger struct{}

func (nopLogger) LogInfo(context.Context, string, map[string]interface{})    {}
func (nopLogger) LogWarning(context.Context, string, map[string]interface{}) {}
func (nopLogger) LogError(context.Context, string, map[string]interface{})   {}
func (nopLogger) LogNotice(context.Context, string, map[string]interface{})  {}

func notFoundErr() error {
	return &gh.ErrorResponse{Response: &http.Response{
		StatusCode: http.StatusNotFound,
		Request:    &http.Request{Method: http.MethodPost, URL: &url.URL{}},
	}}
}

func modifiedFile(path, patch string) domain.PullRequestFile {
	return domain.PullRequestFile{Path: path, Status: domain.FileStatusModified, Patch: patch}
}

func newDriver(tracker *MockTracker, completer *MockCompleter) *prreview.Driver {
	return prreview.NewDriver(tracker, completer, nopLogger{}, prreview.Config{})
}

func TestRun_PostsCommentsInOrder(t *testing.T) {
	tracker := &MockTracker{
		PR:    domain.PullRequest{Number: 7, HeadSHA: "deadbeef"},
		Files: []domain.PullRequestFile{modifiedFile("main.go", simplePatch)},
	}
	completer := &MockCompleter{Replies: map[string]string{
		"main.go": `[{"line":2,"comment":"name the constant"},{"line":2,"comment":"add a test"}]`,
	}}

	stats, err := newDriver(tracker, completer).Run(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{Processed: 1}, stats)

	require.Len(t, tracker.Posted, 2)
	assert.Equal(t, "name the constant", tracker.Posted[0].Body)
	assert.Equal(t, "add a test", tracker.Posted[1].Body)
	// Markers, header, context and deletion occupy positions 1-5, so the
	// "+var x = 2" line carrying new line 2 is position 6.
	assert.Equal(t, 6, tracker.Posted[0].Position)
	assert.Equal(t, "main.go", tracker.Posted[0].Path)
}

func TestRun_SkipReasons(t *testing.T) {
	tracker := &MockTracker{
		PR: domain.PullRequest{Number: 7, HeadSHA: "deadbeef"},
		Files: []domain.PullRequestFile{
			{Path: "gone.go", Status: domain.FileStatusRemoved, Patch: simplePatch},
			modifiedFile("logo.PNG", simplePatch),
			modifiedFile("huge.go", ""),
			modifiedFile("main.go", simplePatch),
		},
	}
	completer := &MockCompleter{Replies: map[string]string{
		"main.go": `[{"line":2,"comment":"ok"}]`,
	}}

	stats, err := newDriver(tracker, completer).Run(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{Processed: 1, Skipped: 3}, stats)
	require.Len(t, tracker.Posted, 1)
	assert.Equal(t, "main.go", tracker.Posted[0].Path)
}

func TestRun_NotFoundOnPostCountsAsSkip(t *testing.T) {
	tracker := &MockTracker{
		PR:          domain.PullRequest{Number: 7, HeadSHA: "deadbeef"},
		Files:       []domain.PullRequestFile{modifiedFile("main.go", simplePatch)},
		CommentErrs: map[string]error{"vanished": notFoundErr()},
	}
	completer := &MockCompleter{Replies: map[string]string{
		"main.go": `[{"line":2,"comment":"vanished"}]`,
	}}

	stats, err := newDriver(tracker, completer).Run(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{Skipped: 1}, stats)
	assert.Empty(t, tracker.Posted)
}

func TestRun_FileErrorDoesNotAbortRemainingFiles(t *testing.T) {
	tracker := &MockTracker{
		PR: domain.PullRequest{Number: 7, HeadSHA: "deadbeef"},
		Files: []domain.PullRequestFile{
			modifiedFile("broken.go", simplePatch),
			modifiedFile("main.go", simplePatch),
		},
		CommentErrs: map[string]error{"boom": errors.New("500 internal error")},
	}
	completer := &MockCompleter{Replies: map[string]string{
		"broken.go": `[{"line":2,"comment":"boom"}]`,
		"main.go":   `[{"line":2,"comment":"fine"}]`,
	}}

	stats, err := newDriver(tracker, completer).Run(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{Processed: 1, Errored: 1}, stats)
	require.Len(t, tracker.Posted, 1)
	assert.Equal(t, "fine", tracker.Posted[0].Body)
}

func TestRun_UnparseableReviewStillCountsProcessed(t *testing.T) {
	tracker := &MockTracker{
		PR:    domain.PullRequest{Number: 7, HeadSHA: "deadbeef"},
		Files: []domain.PullRequestFile{modifiedFile("main.go", simplePatch)},
	}
	completer := &MockCompleter{Replies: map[string]string{
		"main.go": "I would rather talk about the weather.",
	}}

	stats, err := newDriver(tracker, completer).Run(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{Processed: 1}, stats)
	assert.Empty(t, tracker.Posted)
}

func TestRun_UnlocatableLineIsDroppedNotFatal(t *testing.T) {
	tracker := &MockTracker{
		PR:    domain.PullRequest{Number: 7, HeadSHA: "deadbeef"},
		Files: []domain.PullRequestFile{modifiedFile("main.go", simplePatch)},
	}
	completer := &MockCompleter{Replies: map[string]string{
		"main.go": `[{"line":999,"comment":"off the map"},{"line":2,"comment":"on the map"}]`,
	}}

	stats, err := newDriver(tracker, completer).Run(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{Processed: 1}, stats)
	require.Len(t, tracker.Posted, 1)
	assert.Equal(t, "on the map", tracker.Posted[0].Body)
}

func TestRun_LoadFailuresAreFatal(t *testing.T) {
	t.Run("pull request lookup", func(t *testing.T) {
		tracker := &MockTracker{PRErr: fmt.Errorf("404 not found")}
		_, err := newDriver(tracker, &MockCompleter{}).Run(context.Background(), 7)
		require.Error(t, err)
	})

	t.Run("file listing", func(t *testing.T) {
		tracker := &MockTracker{FilesErr: fmt.Errorf("rate limited")}
		_, err := newDriver(tracker, &MockCompleter{}).Run(context.Background(), 7)
		require.Error(t, err)
	})
}

func TestRun_CompleterFailureCountsErrored(t *testing.T) {
	tracker := &MockTracker{
		PR:    domain.PullRequest{Number: 7, HeadSHA: "deadbeef"},
		Files: []domain.PullRequestFile{modifiedFile("main.go", simplePatch)},
	}
	completer := &MockCompleter{Err: errors.New("model overloaded")}

	stats, err := newDriver(tracker, completer).Run(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStats{Errored: 1}, stats)
}
