package github

import (
	"context"
	"fmt"
	"time"

	gh "github.com/google/go-github/v59/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/banderson/issueops/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Secondary rate limits on write endpoints bite well before the hourly
// quota does, so pace all calls conservatively.
const requestsPerSecond = 2

// Client wraps the GitHub API for a single repository.
type Client struct {
	gh      *gh.Client
	owner   string
	repo    string
	limiter *rate.Limiter
}

// NewClient creates a client authenticated with the given token, scoped to
// owner/repo. The token is typically GITHUB_TOKEN from a workflow run.
func NewClient(token, owner, repo string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = defaultTimeout

	return &Client{
		gh:      gh.NewClient(tc),
		owner:   owner,
		repo:    repo,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// SetBaseURL points the client at a test server.
func (c *Client) SetBaseURL(baseURL string) error {
	client, err := c.gh.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return err
	}
	c.gh = client
	return nil
}

// GetPullRequest fetches the metadata the drivers need from a PR.
func (c *Client) GetPullRequest(ctx context.Context, number int) (domain.PullRequest, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PullRequest{}, err
	}

	pr, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, number)
	if err != nil {
		return domain.PullRequest{}, fmt.Errorf("get pull request #%d: %w", number, err)
	}

	return domain.PullRequest{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		HTMLURL:    pr.GetHTMLURL(),
		HeadSHA:    pr.GetHead().GetSHA(),
		BaseBranch: pr.GetBase().GetRef(),
	}, nil
}

// ListPullRequestFiles returns all changed files in API order, following
// pagination.
func (c *Client) ListPullRequestFiles(ctx context.Context, number int) ([]domain.PullRequestFile, error) {
	var files []domain.PullRequestFile
	opts := &gh.ListOptions{PerPage: 100}

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		page, resp, err := c.gh.PullRequests.ListFiles(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list files for pull request #%d: %w", number, err)
		}

		for _, f := range page {
			files = append(files, domain.PullRequestFile{
				Path:   f.GetFilename(),
				Status: f.GetStatus(),
				Patch:  f.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// CreatePullRequestInput carries everything needed to open a PR.
type CreatePullRequestInput struct {
	Title string
	Body  string
	Head  string
	Base  string
}

// CreatePullRequest opens a pull request from Head into Base.
func (c *Client) CreatePullRequest(ctx context.Context, input CreatePullRequestInput) (domain.PullRequest, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.PullRequest{}, err
	}

	pr, _, err := c.gh.PullRequests.Create(ctx, c.owner, c.repo, &gh.NewPullRequest{
		Title: gh.String(input.Title),
		Body:  gh.String(input.Body),
		Head:  gh.String(input.Head),
		Base:  gh.String(input.Base),
	})
	if err != nil {
		return domain.PullRequest{}, fmt.Errorf("create pull request: %w", err)
	}

	return domain.PullRequest{
		Number:     pr.GetNumber(),
		Title:      pr.GetTitle(),
		HTMLURL:    pr.GetHTMLURL(),
		HeadSHA:    pr.GetHead().GetSHA(),
		BaseBranch: pr.GetBase().GetRef(),
	}, nil
}

// CreateIssueComment posts a comment on an issue (or on a PR's
// conversation tab, which is the same endpoint).
func (c *Client) CreateIssueComment(ctx context.Context, number int, body string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &gh.IssueComment{
		Body: gh.String(body),
	})
	if err != nil {
		return fmt.Errorf("comment on issue #%d: %w", number, err)
	}
	return nil
}

// CreateReviewComment posts an inline comment anchored by commit SHA, file
// path, and diff position.
func (c *Client) CreateReviewComment(ctx context.Context, number int, commitSHA, path, body string, position int) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, _, err := c.gh.PullRequests.CreateComment(ctx, c.owner, c.repo, number, &gh.PullRequestComment{
		Body:     gh.String(body),
		CommitID: gh.String(commitSHA),
		Path:     gh.String(path),
		Position: gh.Int(position),
	})
	if err != nil {
		return fmt.Errorf("review comment on %s:%d: %w", path, position, err)
	}
	return nil
}
