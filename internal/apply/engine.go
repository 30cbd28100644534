// Package apply writes a solution's proposed file edits into the working tree.
package apply

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/banderson/issueops/internal/domain"
)

// Logger is the reporting dependency the engine needs. Incomplete or
// unreachable changes are warnings, not failures.
type Logger interface {
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Engine applies ChangeSpecs to files under a repository root.
//
// Per-change problems (missing fields, missing target file, path escaping
// the root) are logged and skipped so the rest of the solution still lands.
// Read or write failures are fatal: the commit and push that follow assume
// a consistent tree.
type Engine struct {
	root   string
	logger Logger
}

// NewEngine creates an engine rooted at the given repository directory.
func NewEngine(root string, logger Logger) *Engine {
	return &Engine{root: root, logger: logger}
}

// Apply applies each change in list order.
func (e *Engine) Apply(ctx context.Context, changes []domain.ChangeSpec) error {
	for _, change := range changes {
		if err := e.applyChange(ctx, change); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) applyChange(ctx context.Context, change domain.ChangeSpec) error {
	if change.File == "" || change.Replacement == "" {
		e.logger.LogWarning(ctx, "skipping incomplete change", map[string]interface{}{
			"file": change.File,
		})
		return nil
	}

	path, err := e.resolve(change.File)
	if err != nil {
		e.logger.LogWarning(ctx, "skipping change outside repository root", map[string]interface{}{
			"file": change.File,
		})
		return nil
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) || (err == nil && info.IsDir()) {
		e.logger.LogWarning(ctx, "skipping change for missing file", map[string]interface{}{
			"file": change.File,
		})
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", change.File, err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", change.File, err)
	}

	updated := replace(string(content), change)

	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", change.File, err)
	}

	return nil
}

// replace computes the new file content for a change. With no Original the
// replacement is the entire file. With an Original that is not present the
// content comes back unchanged; re-applying an already-applied change is a
// no-op rather than an error.
func replace(content string, change domain.ChangeSpec) string {
	if change.Original == nil {
		return change.Replacement
	}
	return strings.Replace(content, *change.Original, change.Replacement, 1)
}

// resolve joins the change path onto the root and rejects paths that
// escape it.
func (e *Engine) resolve(file string) (string, error) {
	path := filepath.Join(e.root, filepath.FromSlash(file))

	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes repository root", file)
	}

	return path, nil
}
