package github

import (
	"errors"
	"net/http"

	gh "github.com/google/go-github/v59/github"
)

// IsNotFound reports whether the error is a GitHub 404. The PR-review
// driver treats a vanished resource (file or commit gone between listing
// and posting) as a skip rather than a failure.
func IsNotFound(err error) bool {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}
