// Package diff parses unified diff patches and maps new-file line numbers
// to diff positions for inline PR review comments.
//
// A position is the 1-based index of a line within the flattened diff blob,
// counting every line the blob contains: ---/+++ file markers and @@ hunk
// headers occupy positions too. Deleted lines never map to a position since
// they do not exist in the new file.
package diff
