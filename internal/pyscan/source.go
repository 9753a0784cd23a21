// Package pyscan locates semantically meaningful units of Python-like
// source text purely from indentation and lightweight line patterns. It
// deliberately builds no syntax tree; the locators are heuristic and keep
// their documented misbehavior on irregularly indented continuations.
package pyscan

import (
	"strings"

	"pkt.systems/repline/schema"
)

const tabWidth = 8

// Source is an immutable line-indexed view of a text buffer with a
// precomputed logical-line map. A logical line is a physical line plus any
// continuation lines attached by backslashes, open brackets, or unclosed
// triple-quoted strings.
type Source struct {
	lines  []string
	kinds  []schema.LineKind
	starts []int // starts[i]: first physical line of i's logical line
}

// NewSource builds a Source from buffer text.
func NewSource(text string) *Source {
	lines := strings.Split(text, "\n")
	s := &Source{
		lines:  lines,
		kinds:  make([]schema.LineKind, len(lines)),
		starts: make([]int, len(lines)),
	}
	for i, line := range lines {
		s.kinds[i] = Classify(line)
	}
	s.scanLogicalLines()
	return s
}

// Len returns the number of physical lines.
func (s *Source) Len() int { return len(s.lines) }

// Line returns the text of physical line i.
func (s *Source) Line(i int) string {
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return s.lines[i]
}

// Kind returns the classification of physical line i.
func (s *Source) Kind(i int) schema.LineKind {
	if i < 0 || i >= len(s.kinds) {
		return schema.LineBlank
	}
	return s.kinds[i]
}

// IsCode reports whether line i is neither blank nor a comment.
func (s *Source) IsCode(i int) bool {
	k := s.Kind(i)
	return k != schema.LineBlank && k != schema.LineComment
}

// Indent returns the indentation of line i in columns, tabs expanded.
func (s *Source) Indent(i int) int {
	line := s.Line(i)
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

// LogicalStart returns the first physical line of the logical line that
// contains line i.
func (s *Source) LogicalStart(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(s.starts) {
		i = len(s.starts) - 1
	}
	if i < 0 {
		return 0
	}
	return s.starts[i]
}

// LogicalEnd returns the last physical line of the logical line that
// contains line i.
func (s *Source) LogicalEnd(i int) int {
	start := s.LogicalStart(i)
	j := i
	for j+1 < len(s.starts) && s.starts[j+1] == start {
		j++
	}
	return j
}

// Text returns the block's lines joined with newlines.
func (s *Source) Text(b schema.Block) string {
	start, end := b.Start, b.End
	if start < 0 {
		start = 0
	}
	if end > len(s.lines) {
		end = len(s.lines)
	}
	if end <= start {
		return ""
	}
	return strings.Join(s.lines[start:end], "\n")
}

// scanLogicalLines walks the buffer once tracking bracket depth, string
// state, and backslash continuations. Brackets inside strings or comments
// do not count. This is a line-pattern scan, not a grammar.
func (s *Source) scanLogicalLines() {
	depth := 0
	inString := false
	var quote string // `'''` or `"""` while inString
	start := 0
	continued := false

	for i, line := range s.lines {
		if !inString && !continued && depth == 0 {
			start = i
		}
		s.starts[i] = start

		depth, inString, quote = scanLineState(line, depth, inString, quote)
		continued = !inString && strings.HasSuffix(strings.TrimRight(line, " \t"), "\\")
	}
}

// scanLineState advances bracket/string state across one physical line.
func scanLineState(line string, depth int, inString bool, quote string) (int, bool, string) {
	i := 0
	for i < len(line) {
		if inString {
			if strings.HasPrefix(line[i:], quote) {
				inString = false
				i += len(quote)
				continue
			}
			if line[i] == '\\' {
				i += 2
				continue
			}
			i++
			continue
		}
		c := line[i]
		switch c {
		case '#':
			return depth, inString, quote
		case '(', '[', '{':
			depth++
			i++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			i++
		case '\'', '"':
			q := string(c)
			if strings.HasPrefix(line[i:], strings.Repeat(q, 3)) {
				inString = true
				quote = strings.Repeat(q, 3)
				i += 3
				continue
			}
			// Single-quoted strings end on the same line; skip to the
			// closing quote or end of line.
			j := i + 1
			for j < len(line) {
				if line[j] == '\\' {
					j += 2
					continue
				}
				if line[j] == c {
					break
				}
				j++
			}
			if j >= len(line) {
				i = len(line)
			} else {
				i = j + 1
			}
		default:
			i++
		}
	}
	return depth, inString, quote
}
