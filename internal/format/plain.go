package format

import (
	"fmt"
	"strings"

	"pkt.systems/repline/schema"
)

// PlainRenderer formats service results as plain text lines.
type PlainRenderer struct{}

// NewPlainRenderer returns a default plain-text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

// FormatResult converts a capture result into user-facing lines.
func (p *PlainRenderer) FormatResult(result schema.CaptureResult) []string {
	switch result.Class {
	case schema.OutputEmpty:
		return []string{"(no output)"}
	case schema.OutputException:
		lines := []string{"exception occurred:"}
		return append(lines, splitLines(result.Text)...)
	default:
		return splitLines(result.Text)
	}
}

// FormatSession converts a session snapshot into one summary line.
func (p *PlainRenderer) FormatSession(session schema.SessionSnapshot) string {
	fields := []string{
		string(session.Target),
		string(session.State),
	}
	if session.Pid > 0 {
		fields = append(fields, fmt.Sprintf("pid=%d", session.Pid))
	}
	if session.WorkDir != "" {
		fields = append(fields, fmt.Sprintf("workdir=%s", session.WorkDir))
	}
	if session.Dedicated && session.Source != "" {
		fields = append(fields, fmt.Sprintf("source=%s", session.Source))
	}
	return strings.Join(fields, "  ")
}

// FormatBlock converts a located block into a header plus its text lines.
func (p *PlainRenderer) FormatBlock(block schema.Block, text string) []string {
	header := fmt.Sprintf("%s [%d, %d)", block.Kind, block.Start, block.End)
	return append([]string{header}, splitLines(text)...)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
