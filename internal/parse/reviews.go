package parse

import (
	"encoding/json"

	"github.com/banderson/issueops/internal/domain"
)

// ReviewComments parses a raw model response expected to be a JSON array of
// {line, comment} objects. Elements that are not objects, have a
// non-positive line, or an empty comment are dropped silently; the model
// often corrupts individual entries without invalidating the rest.
//
// Returns nil when the response is not a JSON array at all. That is a
// normal per-file outcome, not an error: the caller logs a warning and
// moves on to the next file.
func ReviewComments(raw string) []domain.ReviewComment {
	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return nil
	}

	comments := make([]domain.ReviewComment, 0, len(elements))
	for _, element := range elements {
		var c domain.ReviewComment
		if err := json.Unmarshal(element, &c); err != nil {
			continue
		}
		if c.Line <= 0 || c.Comment == "" {
			continue
		}
		comments = append(comments, c)
	}

	return comments
}
