package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/banderson/issueops/internal/domain"
	"github.com/banderson/issueops/internal/usecase/issuefix"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// IssueFixer defines the dependency required to run the fix-issue command.
type IssueFixer interface {
	Run(ctx context.Context, req issuefix.Request) (issuefix.Result, error)
}

// PullRequestReviewer defines the dependency required to run the review-pr command.
type PullRequestReviewer interface {
	Run(ctx context.Context, prNumber int) (domain.ReviewStats, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	IssueFixer IssueFixer
	Reviewer   PullRequestReviewer
	Args       Arguments
	Version    string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "issueops",
		Short: "AI-assisted issue fixing and PR review for GitHub",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(fixIssueCommand(deps.IssueFixer))
	root.AddCommand(reviewPRCommand(deps.Reviewer))
	root.AddCommand(checkSkipCommand())

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func fixIssueCommand(fixer IssueFixer) *cobra.Command {
	var number int
	var title string
	var body string

	cmd := &cobra.Command{
		Use:   "fix-issue",
		Short: "Generate a fix for an issue and open a pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if number <= 0 {
				return fmt.Errorf("--number must be a positive issue number")
			}
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			result, err := fixer.Run(cmd.Context(), issuefix.Request{
				Issue: domain.Issue{Number: number, Title: title, Body: body},
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Opened %s (branch %s)\n", result.PullRequestURL, result.Branch)
			return nil
		},
	}

	cmd.Flags().IntVar(&number, "number", 0, "Issue number to fix")
	cmd.Flags().StringVar(&title, "title", "", "Issue title")
	cmd.Flags().StringVar(&body, "body", "", "Issue body")

	return cmd
}

func reviewPRCommand(reviewer PullRequestReviewer) *cobra.Command {
	var number int

	cmd := &cobra.Command{
		Use:   "review-pr",
		Short: "Post AI review comments on a pull request",
		RunE: func(cmd *cobra.Command, args []string) error {
			if number <= 0 {
				return fmt.Errorf("--number must be a positive pull request number")
			}

			stats, err := reviewer.Run(cmd.Context(), number)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Reviewed PR #%d: %d processed, %d skipped, %d errored\n",
				number, stats.Processed, stats.Skipped, stats.Errored)
			return nil
		},
	}

	cmd.Flags().IntVar(&number, "number", 0, "Pull request number to review")

	return cmd
}
