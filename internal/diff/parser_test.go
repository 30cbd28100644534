package diff_test

import (
	"testing"

	"github.com/banderson/issueops/internal/diff"
)

const twoHunkPatch = `@@ -1,3 +1,3 @@
 alpha
-bravo
+charlie
 delta
@@ -10,2 +12,4 @@
 echo
+foxtrot
+golf
 hotel`

func TestLocate_SingleHunk(t *testing.T) {
	patch := `@@ -10,3 +10,4 @@ func example() {
 context line
+added line
 another context
+second addition`

	// Header is position 1, so "added line" (new line 11) is position 3.
	pos, ok := diff.Locate(patch, 11)
	if !ok {
		t.Fatal("Locate() not found, want found")
	}
	if pos != 3 {
		t.Errorf("Locate() = %d, want 3", pos)
	}
}

func TestLocate_CountsFileMarkerLines(t *testing.T) {
	patch := "--- a/main.go\n+++ b/main.go\n@@ -1 +1 @@\n-old\n+new"

	// Markers and header occupy positions 1-3, deletion is 4, addition is 5.
	pos, ok := diff.Locate(patch, 1)
	if !ok {
		t.Fatal("Locate() not found, want found")
	}
	if pos != 5 {
		t.Errorf("Locate() = %d, want 5", pos)
	}
}

func TestLocate_SecondHunk(t *testing.T) {
	// Line 13 must resolve inside the second hunk, not the first.
	pos, ok := diff.Locate(twoHunkPatch, 13)
	if !ok {
		t.Fatal("Locate() not found, want found")
	}

	parsed := diff.Parse(twoHunkPatch)
	line, ok := parsed.LineAt(pos)
	if !ok {
		t.Fatalf("LineAt(%d) not found", pos)
	}
	if line.NewLine == nil || *line.NewLine != 13 {
		t.Errorf("line at position %d has new line %v, want 13", pos, line.NewLine)
	}
	if line.Content != "foxtrot" {
		t.Errorf("line content = %q, want %q", line.Content, "foxtrot")
	}
}

func TestLocate_NotFound(t *testing.T) {
	tests := []struct {
		name string
		line int
	}{
		{name: "past end of diff", line: 99},
		{name: "zero line", line: 0},
		{name: "negative line", line: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if pos, ok := diff.Locate(twoHunkPatch, tt.line); ok {
				t.Errorf("Locate(%d) = %d, want not found", tt.line, pos)
			}
		})
	}
}

func TestLocate_DeletedLineNeverMatches(t *testing.T) {
	patch := `@@ -1,3 +1,2 @@
 keep
-gone
 tail`

	// New line 2 is the context line after the deletion (position 4),
	// never the deleted line itself.
	pos, ok := diff.Locate(patch, 2)
	if !ok {
		t.Fatal("Locate() not found, want found")
	}
	if pos != 4 {
		t.Errorf("Locate() = %d, want 4", pos)
	}

	parsed := diff.Parse(patch)
	line, _ := parsed.LineAt(pos)
	if line.Content != "tail" {
		t.Errorf("line content = %q, want %q", line.Content, "tail")
	}
}

func TestLocate_RoundTrip(t *testing.T) {
	// Every locatable line reports the same new-file number when re-parsed.
	parsed := diff.Parse(twoHunkPatch)
	for _, want := range []int{1, 2, 3, 12, 13, 14, 15} {
		pos, ok := parsed.FindPosition(want)
		if !ok {
			t.Fatalf("FindPosition(%d) not found", want)
		}
		line, ok := parsed.LineAt(pos)
		if !ok {
			t.Fatalf("LineAt(%d) not found", pos)
		}
		if line.NewLine == nil || *line.NewLine != want {
			t.Errorf("position %d reports new line %v, want %d", pos, line.NewLine, want)
		}
	}
}

func TestParse_HunkHeaders(t *testing.T) {
	parsed := diff.Parse(twoHunkPatch)
	if len(parsed.Hunks) != 2 {
		t.Fatalf("Parse() hunks = %d, want 2", len(parsed.Hunks))
	}

	first := parsed.Hunks[0]
	if first.OldStart != 1 || first.OldLines != 3 || first.NewStart != 1 || first.NewLines != 3 {
		t.Errorf("first hunk header = %+v", first)
	}

	second := parsed.Hunks[1]
	if second.OldStart != 10 || second.OldLines != 2 || second.NewStart != 12 || second.NewLines != 4 {
		t.Errorf("second hunk header = %+v", second)
	}
}

func TestParse_OmittedRangeLength(t *testing.T) {
	parsed := diff.Parse("@@ -5 +7 @@\n-x\n+y")
	if len(parsed.Hunks) != 1 {
		t.Fatalf("Parse() hunks = %d, want 1", len(parsed.Hunks))
	}
	hunk := parsed.Hunks[0]
	if hunk.NewStart != 7 || hunk.NewLines != 1 {
		t.Errorf("hunk = %+v, want NewStart 7, NewLines 1", hunk)
	}
}

func TestParse_Empty(t *testing.T) {
	parsed := diff.Parse("")
	if len(parsed.Hunks) != 0 {
		t.Errorf("Parse(\"\") hunks = %d, want 0", len(parsed.Hunks))
	}
}

func TestParse_NoNewlineMarkerSkipped(t *testing.T) {
	patch := "@@ -1 +1 @@\n-old\n+new\n\\ No newline at end of file"

	pos, ok := diff.Locate(patch, 1)
	if !ok {
		t.Fatal("Locate() not found, want found")
	}
	if pos != 3 {
		t.Errorf("Locate() = %d, want 3", pos)
	}
	if _, ok := diff.Locate(patch, 2); ok {
		t.Error("backslash marker must not count as a content line")
	}
}
