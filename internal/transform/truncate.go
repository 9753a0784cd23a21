package transform

import "strings"

// EllipsisMarker joins the head and tail of truncated display text.
const EllipsisMarker = "..."

// TruncateForDisplay keeps the first headLines and last tailLines of text,
// joined by a single ellipsis marker line, when the text is longer than
// headLines+tailLines. Shorter text is returned unchanged.
func TruncateForDisplay(text string, headLines, tailLines int) string {
	lines := strings.Split(text, "\n")
	if len(lines) <= headLines+tailLines {
		return text
	}
	out := make([]string, 0, headLines+tailLines+1)
	out = append(out, lines[:headLines]...)
	out = append(out, EllipsisMarker)
	out = append(out, lines[len(lines)-tailLines:]...)
	return strings.Join(out, "\n")
}
