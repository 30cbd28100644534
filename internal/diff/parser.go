package diff

import (
	"strconv"
	"strings"
)

// LineType represents the type of a line in a diff.
type LineType int

const (
	// LineContext represents an unchanged context line (starts with ' ').
	LineContext LineType = iota
	// LineAddition represents an added line (starts with '+').
	LineAddition
	// LineDeletion represents a deleted line (starts with '-').
	LineDeletion
)

// Line represents a single content line in a diff hunk.
type Line struct {
	Type     LineType // The type of change
	Content  string   // The line content (without the prefix)
	NewLine  *int     // Line number in new file (nil for deletions)
	Position int      // 1-based position within the whole diff blob
}

// Hunk represents a single @@ hunk in a unified diff.
type Hunk struct {
	OldStart int    // Starting line in old file
	OldLines int    // Number of lines from old file
	NewStart int    // Starting line in new file
	NewLines int    // Number of lines in new file
	Lines    []Line // The content lines in this hunk
}

// ParsedDiff represents a parsed unified diff for a single file.
type ParsedDiff struct {
	Hunks []Hunk
}

// Parse parses a unified diff string into a ParsedDiff. Every line of the
// input occupies a position, including file markers and hunk headers, so
// positions line up with the raw blob's line numbering.
func Parse(patch string) ParsedDiff {
	if patch == "" {
		return ParsedDiff{}
	}

	lines := strings.Split(patch, "\n")
	result := ParsedDiff{}

	var currentHunk *Hunk
	currentNewLine := 0

	for i, line := range lines {
		position := i + 1

		// Hunk header: reset the new-file counter to newStart-1 so the
		// first content line after the header lands on newStart.
		if strings.HasPrefix(line, "@@") {
			if currentHunk != nil {
				result.Hunks = append(result.Hunks, *currentHunk)
			}
			hunk := parseHunkHeader(line)
			currentHunk = &hunk
			currentNewLine = hunk.NewStart - 1
			continue
		}

		// File markers and git header lines occupy a position but carry
		// no new-file content.
		if strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") ||
			strings.HasPrefix(line, "diff --git") ||
			strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "\\ ") {
			continue
		}

		// A trailing empty element from the final newline is not content.
		if currentHunk == nil || line == "" {
			continue
		}

		diffLine := Line{Position: position}
		switch {
		case strings.HasPrefix(line, "+"):
			currentNewLine++
			diffLine.Type = LineAddition
			diffLine.Content = line[1:]
			diffLine.NewLine = intPtr(currentNewLine)
		case strings.HasPrefix(line, "-"):
			// Deletions have no new-side line number.
			diffLine.Type = LineDeletion
			diffLine.Content = line[1:]
		case strings.HasPrefix(line, " "):
			currentNewLine++
			diffLine.Type = LineContext
			diffLine.Content = line[1:]
			diffLine.NewLine = intPtr(currentNewLine)
		default:
			// Unknown prefixes are treated as context.
			currentNewLine++
			diffLine.Type = LineContext
			diffLine.Content = line
			diffLine.NewLine = intPtr(currentNewLine)
		}

		currentHunk.Lines = append(currentHunk.Lines, diffLine)
	}

	if currentHunk != nil {
		result.Hunks = append(result.Hunks, *currentHunk)
	}

	return result
}

// FindPosition returns the diff position for a given new-side line number.
// The second return is false when the line is not in the diff: deleted
// lines, regions outside the hunks, or line numbers past the end.
func (pd ParsedDiff) FindPosition(newLineNumber int) (int, bool) {
	if newLineNumber <= 0 {
		return 0, false
	}

	for _, hunk := range pd.Hunks {
		for _, line := range hunk.Lines {
			if line.NewLine != nil && *line.NewLine == newLineNumber {
				return line.Position, true
			}
		}
	}

	return 0, false
}

// Locate maps a new-file line number to its position within the patch blob.
// Not-found is a normal outcome the caller handles by skipping the comment.
func Locate(patch string, newLineNumber int) (int, bool) {
	return Parse(patch).FindPosition(newLineNumber)
}

// LineAt returns the parsed line occupying the given position, if any.
func (pd ParsedDiff) LineAt(position int) (Line, bool) {
	for _, hunk := range pd.Hunks {
		for _, line := range hunk.Lines {
			if line.Position == position {
				return line, true
			}
		}
	}
	return Line{}, false
}

// parseHunkHeader parses a header like "@@ -10,7 +10,8 @@ optional context".
// Omitted lengths default to 1 per the unified diff format.
func parseHunkHeader(line string) (hunk Hunk) {
	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return hunk
	}

	for _, field := range strings.Fields(strings.TrimSpace(parts[1])) {
		switch {
		case strings.HasPrefix(field, "-"):
			hunk.OldStart, hunk.OldLines = parseRange(strings.TrimPrefix(field, "-"))
		case strings.HasPrefix(field, "+"):
			hunk.NewStart, hunk.NewLines = parseRange(strings.TrimPrefix(field, "+"))
		}
	}
	return hunk
}

// parseRange parses "start,count" or "start" format.
func parseRange(s string) (start, count int) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
	} else {
		start, _ = strconv.Atoi(s)
		count = 1
	}
	return
}

func intPtr(n int) *int {
	return &n
}
