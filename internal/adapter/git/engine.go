// Package git implements the version-control operations the issue-fix
// driver needs, backed by go-git.
package git

import (
	"context"
	"errors"
	"fmt"
	"time"

	goGit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

const (
	defaultAuthorName  = "issueops"
	defaultAuthorEmail = "issueops[bot]@users.noreply.github.com"
)

// Engine performs git operations on a local working tree.
type Engine struct {
	repoDir     string
	remote      string
	auth        transport.AuthMethod
	authorName  string
	authorEmail string
}

// NewEngine constructs an engine for the repository directory. The token
// authenticates fetch and push against the remote; an empty token leaves
// those operations unauthenticated.
func NewEngine(repoDir, remote, token string) *Engine {
	e := &Engine{
		repoDir:     repoDir,
		remote:      remote,
		authorName:  defaultAuthorName,
		authorEmail: defaultAuthorEmail,
	}
	if token != "" {
		// Installation and workflow tokens authenticate as this fixed user.
		e.auth = &githttp.BasicAuth{Username: "x-access-token", Password: token}
	}
	return e
}

// SetAuthor overrides the commit author identity.
func (e *Engine) SetAuthor(name, email string) {
	if name != "" {
		e.authorName = name
	}
	if email != "" {
		e.authorEmail = email
	}
}

// FetchBranch shallowly fetches a remote branch so it can serve as a merge
// base. Already-up-to-date is success.
func (e *Engine) FetchBranch(ctx context.Context, branch string) error {
	repo, err := e.open()
	if err != nil {
		return err
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, e.remote, branch))
	err = repo.FetchContext(ctx, &goGit.FetchOptions{
		RemoteName: e.remote,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Depth:      1,
		Tags:       goGit.NoTags,
		Auth:       e.auth,
	})
	if errors.Is(err, goGit.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch %s: %w", branch, err)
	}
	return nil
}

// CheckoutNewBranch creates and checks out a branch starting from base.
// When base cannot be resolved or checked out, it falls back once to
// creating the branch from the currently checked-out state.
func (e *Engine) CheckoutNewBranch(ctx context.Context, name, base string) error {
	repo, err := e.open()
	if err != nil {
		return err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(name)

	if hash, resolveErr := e.resolveBase(repo, base); resolveErr == nil {
		err = worktree.Checkout(&goGit.CheckoutOptions{
			Hash:   hash,
			Branch: branchRef,
			Create: true,
		})
		if err == nil {
			return nil
		}
	}

	// Fallback: branch off whatever is checked out right now.
	err = worktree.Checkout(&goGit.CheckoutOptions{
		Branch: branchRef,
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("checkout branch %s: %w", name, err)
	}
	return nil
}

// CommitAll stages every change in the working tree and commits it.
func (e *Engine) CommitAll(ctx context.Context, message string) (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&goGit.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("stage changes: %w", err)
	}

	hash, err := worktree.Commit(message, &goGit.CommitOptions{
		Author: &object.Signature{
			Name:  e.authorName,
			Email: e.authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	return hash.String(), nil
}

// Push pushes the named local branch to the same branch on the remote.
func (e *Engine) Push(ctx context.Context, branch string) error {
	repo, err := e.open()
	if err != nil {
		return err
	}

	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = repo.PushContext(ctx, &goGit.PushOptions{
		RemoteName: e.remote,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
		Auth:       e.auth,
	})
	if errors.Is(err, goGit.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push %s: %w", branch, err)
	}
	return nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if name := head.Name(); name.IsBranch() {
		return name.Short(), nil
	}
	return "", fmt.Errorf("detached HEAD")
}

func (e *Engine) open() (*goGit.Repository, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}

// resolveBase resolves a base branch to a commit hash, preferring the
// remote-tracking ref since the local clone is usually shallow.
func (e *Engine) resolveBase(repo *goGit.Repository, base string) (plumbing.Hash, error) {
	candidates := []string{
		fmt.Sprintf("refs/remotes/%s/%s", e.remote, base),
		fmt.Sprintf("refs/heads/%s", base),
		base,
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return *hash, nil
	}
	return plumbing.ZeroHash, lastErr
}
