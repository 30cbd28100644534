package domain

import "fmt"

const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusRemoved  = "removed"
	FileStatusRenamed  = "renamed"
)

// Issue is the tracker issue an automated fix run starts from.
type Issue struct {
	Number int
	Title  string
	Body   string
}

// PullRequest captures the pull request metadata the drivers need.
type PullRequest struct {
	Number     int
	Title      string
	HTMLURL    string
	HeadSHA    string
	BaseBranch string
}

// PullRequestFile is one changed file as returned by the tracker's
// file-listing call. Patch is the unified diff for the file and may be
// empty for binary or oversized files.
type PullRequestFile struct {
	Path   string
	Status string
	Patch  string
}

// ReviewComment is a single AI-produced review suggestion, anchored to a
// line number in the new version of the file.
type ReviewComment struct {
	Line    int    `json:"line"`
	Comment string `json:"comment"`
}

// PositionedComment is a ReviewComment resolved to its position within the
// flattened unified diff. Only positioned comments are posted.
type PositionedComment struct {
	ReviewComment
	Position int
}

// ChangeSpec describes one proposed edit. When Original is nil the
// replacement is the entire new file content; otherwise the first literal
// occurrence of Original is replaced.
type ChangeSpec struct {
	File        string  `json:"file"`
	Original    *string `json:"original,omitempty"`
	Replacement string  `json:"replacement"`
}

// Solution is the structured fix proposal produced by the AI for one
// issue-fix run. It is consumed immediately and never persisted.
type Solution struct {
	Analysis      string       `json:"analysis"`
	Files         []string     `json:"files"`
	Solution      string       `json:"solution"`
	Changes       []ChangeSpec `json:"changes"`
	CommitMessage string       `json:"commitMessage"`
}

// DefaultCommitMessage is used when the AI solution carries no commit message.
func DefaultCommitMessage(issueNumber int) string {
	return fmt.Sprintf("Fix issue #%d", issueNumber)
}

// ReviewStats accumulates per-file outcomes across one PR-review invocation.
type ReviewStats struct {
	Processed int
	Skipped   int
	Errored   int
}
