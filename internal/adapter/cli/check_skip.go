package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/banderson/issueops/internal/usecase/skip"
)

// ErrShouldReview is returned when no skip trigger is found,
// indicating the run should proceed. Use this as a sentinel
// error in the GitHub Action workflow.
var ErrShouldReview = errors.New("should run")

// checkSkipCommand creates the check-skip subcommand.
// This command checks commit messages and PR metadata for skip triggers.
//
// Exit codes:
//   - 0: Skip trigger found, run should be skipped
//   - 1: No skip trigger, run should proceed
func checkSkipCommand() *cobra.Command {
	var commitMessages []string
	var prTitle string
	var prDescription string

	cmd := &cobra.Command{
		Use:   "check-skip",
		Short: "Check if the automation run should be skipped",
		Long: `Check commit messages and PR metadata for skip triggers.

Supported skip trigger patterns:
  [skip issueops]
  [skip-issueops]

Patterns are case-insensitive and can appear anywhere in the text.

Exit codes:
  0 - Skip trigger found, run should be skipped
  1 - No skip trigger, run should proceed

Example usage in GitHub Actions:
  if ./issueops check-skip --commit-message "${{ github.event.head_commit.message }}"; then
    echo "Skipping automation"
    exit 0
  fi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := skip.Check(skip.CheckRequest{
				CommitMessages: commitMessages,
				PRTitle:        prTitle,
				PRDescription:  prDescription,
			})

			if result.ShouldSkip {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skip: %s\n", result.Reason)
				return nil
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "run: no skip trigger found")
			return ErrShouldReview
		},
	}

	cmd.Flags().StringArrayVar(&commitMessages, "commit-message", nil, "Commit message(s) to check (can be repeated)")
	cmd.Flags().StringVar(&prTitle, "pr-title", "", "PR title to check")
	cmd.Flags().StringVar(&prDescription, "pr-description", "", "PR description/body to check")

	return cmd
}
