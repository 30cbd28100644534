// Package prreview generates line-level AI review comments on an open
// pull request's diff.
package prreview

import (
	"context"
	"fmt"
	"strings"

	githubadapter "github.com/banderson/issueops/internal/adapter/github"
	"github.com/banderson/issueops/internal/diff"
	"github.com/banderson/issueops/internal/domain"
	"github.com/banderson/issueops/internal/parse"
)

// Completer is the AI backend dependency. The review driver uses the
// direct model API; each file's patch is self-contained context.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Tracker covers the issue-tracker operations of one review run.
type Tracker interface {
	GetPullRequest(ctx context.Context, number int) (domain.PullRequest, error)
	ListPullRequestFiles(ctx context.Context, number int) ([]domain.PullRequestFile, error)
	CreateReviewComment(ctx context.Context, number int, commitSHA, path, body string, position int) error
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
	// SkipExtensions lists lowercase file suffixes that are never worth
	// reviewing (binaries, images, lockfiles).
	SkipExtensions []string
}

// DefaultSkipExtensions covers the usual non-reviewable suffixes.
func DefaultSkipExtensions() []string {
	return []string{
		".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico",
		".pdf", ".zip", ".woff", ".woff2", ".lock", ".sum",
	}
}

// Driver reviews one pull request file by file, strictly in listing order.
// Per-file problems never abort the remaining files; only failures to read
// the PR itself are fatal.
type Driver struct {
	tracker   Tracker
	completer Completer
	logger    Logger
	config    Config
}

// NewDriver wires a PR-review driver.
func NewDriver(tracker Tracker, completer Completer, logger Logger, config Config) *Driver {
	if len(config.SkipExtensions) == 0 {
		config.SkipExtensions = DefaultSkipExtensions()
	}
	return &Driver{
		tracker:   tracker,
		completer: completer,
		logger:    logger,
		config:    config,
	}
}

// Run reviews every reviewable file in the pull request and returns the
// accumulated counters.
func (d *Driver) Run(ctx context.Context, prNumber int) (domain.ReviewStats, error) {
	var stats domain.ReviewStats

	pr, err := d.tracker.GetPullRequest(ctx, prNumber)
	if err != nil {
		return stats, fmt.Errorf("load pull request #%d: %w", prNumber, err)
	}

	files, err := d.tracker.ListPullRequestFiles(ctx, prNumber)
	if err != nil {
		return stats, fmt.Errorf("list files for pull request #%d: %w", prNumber, err)
	}

	for _, file := range files {
		if reason := d.skipReason(file); reason != "" {
			d.logger.LogInfo(ctx, "skipping file", map[string]interface{}{
				"file":   file.Path,
				"reason": reason,
			})
			stats.Skipped++
			continue
		}

		posted, err := d.reviewFile(ctx, pr, file)
		switch {
		case err == nil:
			stats.Processed++
			d.logger.LogInfo(ctx, "reviewed file", map[string]interface{}{
				"file":     file.Path,
				"comments": posted,
			})
		case githubadapter.IsNotFound(err):
			// The file or commit vanished between listing and posting.
			d.logger.LogWarning(ctx, "file no longer available, skipping", map[string]interface{}{
				"file": file.Path,
			})
			stats.Skipped++
		default:
			d.logger.LogError(ctx, "file review failed", map[string]interface{}{
				"file":  file.Path,
				"error": err.Error(),
			})
			stats.Errored++
		}
	}

	d.logger.LogNotice(ctx, "pull request review complete", map[string]interface{}{
		"pull_request": prNumber,
		"processed":    stats.Processed,
		"skipped":      stats.Skipped,
		"errored":      stats.Errored,
	})

	return stats, nil
}

// reviewFile requests review comments for one file's patch and posts the
// ones that resolve to a diff position, in the order the model returned
// them. Returns how many comments were posted.
func (d *Driver) reviewFile(ctx context.Context, pr domain.PullRequest, file domain.PullRequestFile) (int, error) {
	raw, err := d.completer.Complete(ctx, reviewPrompt(file))
	if err != nil {
		return 0, fmt.Errorf("request review: %w", err)
	}

	comments := parse.ReviewComments(raw)
	if comments == nil {
		// Unparseable model output costs this file its review, nothing more.
		d.logger.LogWarning(ctx, "model returned no parseable reviews", map[string]interface{}{
			"file": file.Path,
		})
		return 0, nil
	}

	posted := 0
	for _, positioned := range d.anchor(ctx, file, comments) {
		err := d.tracker.CreateReviewComment(ctx, pr.Number, pr.HeadSHA, file.Path, positioned.Comment, positioned.Position)
		if err != nil {
			return posted, err
		}
		posted++
	}

	return posted, nil
}

// anchor resolves comments to diff positions, dropping the ones whose line
// is not part of the patch.
func (d *Driver) anchor(ctx context.Context, file domain.PullRequestFile, comments []domain.ReviewComment) []domain.PositionedComment {
	anchored := make([]domain.PositionedComment, 0, len(comments))
	for _, comment := range comments {
		position, ok := diff.Locate(file.Patch, comment.Line)
		if !ok {
			d.logger.LogWarning(ctx, "comment line not in diff", map[string]interface{}{
				"file": file.Path,
				"line": comment.Line,
			})
			continue
		}
		anchored = append(anchored, domain.PositionedComment{ReviewComment: comment, Position: position})
	}
	return anchored
}

// skipReason returns why a file is not reviewable, or "" when it is.
func (d *Driver) skipReason(file domain.PullRequestFile) string {
	if file.Status == domain.FileStatusRemoved {
		return "file removed"
	}

	lower := strings.ToLower(file.Path)
	for _, ext := range d.config.SkipExtensions {
		if strings.HasSuffix(lower, ext) {
			return "extension not reviewable"
		}
	}

	if file.Patch == "" {
		return "no patch available"
	}

	return ""
}
