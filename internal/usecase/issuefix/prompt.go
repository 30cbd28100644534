package issuefix

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/banderson/issueops/internal/domain"
)

var titleCaser = cases.Title(language.English)

// solutionPrompt asks for an atomic fix proposal in the JSON shape the
// parser validates.
func solutionPrompt(issue domain.Issue) string {
	var b strings.Builder

	b.WriteString("You are an automated software engineer. Produce a fix for the issue below.\n\n")
	fmt.Fprintf(&b, "Issue #%d: %s\n\n%s\n\n", issue.Number, issue.Title, issue.Body)
	b.WriteString(`Respond with a single JSON object and nothing else:
{
  "analysis": "what is wrong and why",
  "files": ["paths of files to change"],
  "solution": "how the change fixes the issue",
  "changes": [
    {"file": "path", "original": "exact snippet to replace", "replacement": "new text"}
  ],
  "commitMessage": "imperative, one line"
}

Rules:
- "original" must be copied verbatim from the current file content.
- Omit "original" only when the whole file should be replaced by "replacement".
- One change per file, smallest edit that fixes the issue.`)

	return b.String()
}

// branchPrompt asks whether the issue text names a base branch to fix on.
func branchPrompt(issue domain.Issue) string {
	return fmt.Sprintf(
		"Does the following issue text mention a git branch the fix should target?\n\n%s\n\n%s\n\n"+
			"Reply with the branch name only, or the word none.",
		issue.Title, issue.Body)
}

// pullRequestBody renders the solution's narrative sections.
func pullRequestBody(issue domain.Issue, solution domain.Solution) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Automated fix for #%d.\n", issue.Number)
	for _, section := range []struct {
		name string
		text string
	}{
		{"analysis", solution.Analysis},
		{"solution", solution.Solution},
	} {
		if section.text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", titleCaser.String(section.name), section.text)
	}

	if len(solution.Files) > 0 {
		b.WriteString("\n## Changed Files\n\n")
		for _, file := range solution.Files {
			fmt.Fprintf(&b, "- `%s`\n", file)
		}
	}

	return b.String()
}
