package prreview

import (
	"fmt"
	"strings"

	"github.com/banderson/issueops/internal/domain"
)

// reviewPrompt asks for line-anchored review comments on one file's patch.
// Line numbers refer to the new version of the file so they can be mapped
// back onto the diff.
func reviewPrompt(file domain.PullRequestFile) string {
	var b strings.Builder

	b.WriteString("You are a code reviewer. Review the following unified diff for one file.\n\n")
	fmt.Fprintf(&b, "File: %s\n\n```diff\n%s\n```\n\n", file.Path, file.Patch)
	b.WriteString(`Respond with a JSON array and nothing else. Each element:
{"line": <line number in the NEW version of the file>, "comment": "<specific, actionable feedback>"}

Only comment on lines added or changed in this diff. Return [] when the
change looks good.`)

	return b.String()
}
