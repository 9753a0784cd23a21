// Package transform prepares source fragments for transmission and echo:
// dedenting, bootstrap-artifact stripping, display truncation, and the
// whole-file eval command that delegates grammar knowledge to the
// interpreter itself.
package transform

import (
	"fmt"
	"strings"

	"pkt.systems/repline/internal/pyscan"
	"pkt.systems/repline/schema"
)

const tabWidth = 8

// Dedent removes the common indentation of a fragment. The shift amount is
// the minimum indentation among non-blank, non-comment lines. A later code
// line indented less than the first code line marks the fragment as
// inconsistent and is rejected with ErrMalformedBlock rather than silently
// under-shifted. Tabs touched by the shift are normalized to spaces.
func Dedent(text string) (string, error) {
	lines := strings.Split(text, "\n")
	firstIndent := -1
	minIndent := -1
	for i, line := range lines {
		kind := pyscan.Classify(line)
		if kind == schema.LineBlank || kind == schema.LineComment {
			continue
		}
		ind := indentColumns(line)
		if firstIndent == -1 {
			firstIndent = ind
		}
		if minIndent == -1 || ind < minIndent {
			minIndent = ind
		}
		if ind < firstIndent {
			return "", fmt.Errorf("%w: line %d is indented left of the fragment start", schema.ErrMalformedBlock, i+1)
		}
	}
	if firstIndent <= 0 {
		return text, nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = shiftLeft(line, minIndent)
	}
	return strings.Join(out, "\n"), nil
}

// indentColumns measures leading whitespace in columns, tabs expanded.
func indentColumns(line string) int {
	col := 0
	for _, r := range line {
		switch r {
		case ' ':
			col++
		case '\t':
			col += tabWidth - col%tabWidth
		default:
			return col
		}
	}
	return col
}

// shiftLeft removes n columns of leading whitespace. Leading whitespace is
// expanded to spaces first so a shift through a tab cannot leave a partial
// tab behind.
func shiftLeft(line string, n int) string {
	col := 0
	rest := ""
	for i, r := range line {
		if r == ' ' {
			col++
			continue
		}
		if r == '\t' {
			col += tabWidth - col%tabWidth
			continue
		}
		rest = line[i:]
		break
	}
	if rest == "" {
		// Whitespace-only line: nothing survives the shift.
		return ""
	}
	remaining := col - n
	if remaining < 0 {
		remaining = 0
	}
	return strings.Repeat(" ", remaining) + rest
}
