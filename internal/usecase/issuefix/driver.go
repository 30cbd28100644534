// Package issuefix turns an assigned issue into a branch, an AI-generated
// fix, and a pull request.
package issuefix

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	githubadapter "github.com/banderson/issueops/internal/adapter/github"
	"github.com/banderson/issueops/internal/domain"
	"github.com/banderson/issueops/internal/parse"
)

// Completer is the AI backend dependency. The issue-fix driver uses the
// knowledge-base-augmented backend so solutions see repository context.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GitEngine covers the version-control operations of one fix run.
type GitEngine interface {
	FetchBranch(ctx context.Context, branch string) error
	CheckoutNewBranch(ctx context.Context, name, base string) error
	CommitAll(ctx context.Context, message string) (string, error)
	Push(ctx context.Context, branch string) error
}

// Tracker covers the issue-tracker write operations of one fix run.
type Tracker interface {
	CreatePullRequest(ctx context.Context, input githubadapter.CreatePullRequestInput) (domain.PullRequest, error)
	CreateIssueComment(ctx context.Context, number int, body string) error
}

// Applier writes a solution's changes into the working tree.
type Applier interface {
	Apply(ctx context.Context, changes []domain.ChangeSpec) error
}

// Logger is the injected leveled reporter.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
	LogError(ctx context.Context, message string, fields map[string]interface{})
	LogNotice(ctx context.Context, message string, fields map[string]interface{})
}

// Config holds the driver's static settings.
type Config struct {
	// DefaultBaseBranch is used when no base branch can be derived from
	// the issue text.
	DefaultBaseBranch string
}

// Request is one issue-fix invocation.
type Request struct {
	Issue domain.Issue
}

// Result reports what a successful run produced.
type Result struct {
	Branch         string
	BaseBranch     string
	CommitHash     string
	PullRequestURL string
}

// Driver sequences one issue-fix run. Any step failure aborts the run and
// surfaces the error; a failed run may leave partial state (for example a
// pushed branch without a PR) and performs no rollback.
type Driver struct {
	completer Completer
	git       GitEngine
	tracker   Tracker
	applier   Applier
	logger    Logger
	config    Config
}

// NewDriver wires an issue-fix driver.
func NewDriver(completer Completer, git GitEngine, tracker Tracker, applier Applier, logger Logger, config Config) *Driver {
	if config.DefaultBaseBranch == "" {
		config.DefaultBaseBranch = "main"
	}
	return &Driver{
		completer: completer,
		git:       git,
		tracker:   tracker,
		applier:   applier,
		logger:    logger,
		config:    config,
	}
}

// Run executes the full issue-to-PR workflow.
func (d *Driver) Run(ctx context.Context, req Request) (Result, error) {
	issue := req.Issue

	base := d.deriveBaseBranch(ctx, issue)
	d.logger.LogInfo(ctx, "starting issue fix", map[string]interface{}{
		"issue": issue.Number,
		"base":  base,
	})

	// Best effort: make the base resolvable for the checkout below. The
	// checkout has its own fallback when the base is missing.
	if err := d.git.FetchBranch(ctx, base); err != nil {
		d.logger.LogWarning(ctx, "could not fetch base branch", map[string]interface{}{
			"base":  base,
			"error": err.Error(),
		})
	}

	branch := fmt.Sprintf("issue-%d", issue.Number)
	if err := d.git.CheckoutNewBranch(ctx, branch, base); err != nil {
		return Result{}, fmt.Errorf("create branch %s: %w", branch, err)
	}

	raw, err := d.completer.Complete(ctx, solutionPrompt(issue))
	if err != nil {
		return Result{}, fmt.Errorf("request solution: %w", err)
	}

	solution, err := parse.Solution(raw)
	if err != nil {
		return Result{}, err
	}

	if err := d.applier.Apply(ctx, solution.Changes); err != nil {
		return Result{}, fmt.Errorf("apply solution: %w", err)
	}

	message := solution.CommitMessage
	if message == "" {
		message = domain.DefaultCommitMessage(issue.Number)
	}

	hash, err := d.git.CommitAll(ctx, message)
	if err != nil {
		return Result{}, err
	}
	if err := d.git.Push(ctx, branch); err != nil {
		return Result{}, err
	}

	pr, err := d.tracker.CreatePullRequest(ctx, githubadapter.CreatePullRequestInput{
		Title: fmt.Sprintf("Fix #%d: %s", issue.Number, issue.Title),
		Body:  pullRequestBody(issue, solution),
		Head:  branch,
		Base:  base,
	})
	if err != nil {
		return Result{}, err
	}

	comment := fmt.Sprintf("Opened %s with a proposed fix for this issue.", pr.HTMLURL)
	if err := d.tracker.CreateIssueComment(ctx, issue.Number, comment); err != nil {
		return Result{}, err
	}

	d.logger.LogNotice(ctx, "issue fix complete", map[string]interface{}{
		"issue":        issue.Number,
		"branch":       branch,
		"pull_request": pr.HTMLURL,
	})

	return Result{
		Branch:         branch,
		BaseBranch:     base,
		CommitHash:     hash,
		PullRequestURL: pr.HTMLURL,
	}, nil
}

// branchNamePattern matches what git itself accepts for the simple branch
// names this workflow deals in.
var branchNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]*$`)

// deriveBaseBranch asks the model whether the issue text names a target
// branch. Anything unusable falls back to the configured default; the
// fix still lands somewhere sensible when the model guesses badly.
func (d *Driver) deriveBaseBranch(ctx context.Context, issue domain.Issue) string {
	raw, err := d.completer.Complete(ctx, branchPrompt(issue))
	if err != nil {
		d.logger.LogWarning(ctx, "base branch extraction failed", map[string]interface{}{
			"issue": issue.Number,
			"error": err.Error(),
		})
		return d.config.DefaultBaseBranch
	}

	name := strings.TrimSpace(raw)
	if idx := strings.IndexByte(name, '\n'); idx >= 0 {
		name = strings.TrimSpace(name[:idx])
	}
	name = strings.Trim(name, "`\"'")

	if name == "" || strings.EqualFold(name, "none") || !branchNamePattern.MatchString(name) {
		return d.config.DefaultBaseBranch
	}

	return name
}
