package core

import "strings"

const defaultTranscriptMaxLines = 5000

// transcript stores a session's output lines plus the pending partial
// line. Prompts arrive without a trailing newline, so the pending tail is
// what the prompt-boundary predicate inspects.
type transcript struct {
	lines    []string
	pending  string
	maxLines int
}

// persistedTranscript captures transcript lines for persistence.
type persistedTranscript struct {
	Lines   []string
	Pending string
}

func newTranscript(maxLines int) *transcript {
	if maxLines <= 0 {
		maxLines = defaultTranscriptMaxLines
	}
	return &transcript{maxLines: maxLines}
}

// AppendRaw feeds one raw output chunk and returns the display lines it
// completed. Chunks may split anywhere, including mid-line.
func (t *transcript) AppendRaw(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	text := t.pending + string(chunk)
	parts := strings.Split(text, "\n")
	t.pending = parts[len(parts)-1]
	completed := parts[:len(parts)-1]
	t.lines = append(t.lines, completed...)
	t.trim()
	return completed
}

// AppendInput splices echoed input: the first line completes the pending
// prompt line, later lines carry the continuation prompt prefix.
func (t *transcript) AppendInput(text, continuationPrompt string) []string {
	parts := strings.Split(text, "\n")
	completed := make([]string, 0, len(parts))
	completed = append(completed, t.pending+parts[0])
	for _, line := range parts[1:] {
		completed = append(completed, continuationPrompt+line)
	}
	t.pending = ""
	t.lines = append(t.lines, completed...)
	t.trim()
	return completed
}

// AppendLine adds one complete display line (notices, markers).
func (t *transcript) AppendLine(line string) {
	t.lines = append(t.lines, line)
	t.trim()
}

// Tail returns the pending partial line.
func (t *transcript) Tail() string {
	return t.pending
}

// Snapshot returns up to limit trailing lines, the pending tail included
// as a final line when non-empty.
func (t *transcript) Snapshot(limit int) ([]string, int) {
	total := len(t.lines)
	lines := t.lines
	if t.pending != "" {
		total++
		lines = append(append([]string(nil), t.lines...), t.pending)
	}
	if limit <= 0 || limit > total {
		limit = total
	}
	out := make([]string, limit)
	copy(out, lines[total-limit:])
	return out, total
}

// Export returns the transcript state for persistence.
func (t *transcript) Export() persistedTranscript {
	if t == nil {
		return persistedTranscript{}
	}
	return persistedTranscript{
		Lines:   append([]string(nil), t.lines...),
		Pending: t.pending,
	}
}

// newTranscriptFromPersisted restores a transcript within the line limit.
func newTranscriptFromPersisted(state persistedTranscript, maxLines int) *transcript {
	t := newTranscript(maxLines)
	lines := append([]string(nil), state.Lines...)
	if len(lines) > t.maxLines {
		lines = lines[len(lines)-t.maxLines:]
	}
	t.lines = lines
	t.pending = state.Pending
	return t
}

func (t *transcript) trim() {
	if len(t.lines) > t.maxLines {
		t.lines = t.lines[len(t.lines)-t.maxLines:]
	}
}
