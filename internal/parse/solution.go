package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/banderson/issueops/internal/domain"
)

// ErrMalformedSolution indicates the model response did not contain a
// parseable solution object. This aborts the whole issue-fix run: no
// partial fix is safer than a corrupted one.
var ErrMalformedSolution = errors.New("malformed solution response")

// jsonBlockRegex matches a fenced ```json block. Greedy to the last fence
// so code examples nested inside string values survive extraction.
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")

// Solution extracts and parses a solution object from free-form model text.
// Extraction order: a fenced ```json block, then the first top-level {...}
// region via brace matching, then the raw text itself.
func Solution(raw string) (domain.Solution, error) {
	text := ExtractJSONObject(raw)

	var solution domain.Solution
	if err := json.Unmarshal([]byte(text), &solution); err != nil {
		return domain.Solution{}, fmt.Errorf("%w: %v", ErrMalformedSolution, err)
	}

	return solution, nil
}

// ExtractJSONObject isolates the JSON object embedded in model prose.
// Residual fence markers and surrounding whitespace are stripped.
func ExtractJSONObject(text string) string {
	if matches := jsonBlockRegex.FindStringSubmatch(text); len(matches) > 1 {
		return stripFences(matches[1])
	}

	if region, ok := matchBraces(text); ok {
		return stripFences(region)
	}

	return stripFences(text)
}

// matchBraces finds the first top-level {...} region, counting brace depth
// while ignoring braces inside string literals and their escapes. A regex
// would truncate on nested braces, so this is a small scanner instead.
func matchBraces(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	// Unbalanced braces: fall through to raw-text parsing.
	return "", false
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
