package pyscan

import (
	"fmt"
	"regexp"

	"pkt.systems/repline/schema"
)

// HeaderPredicate tests whether a line opens a definition of interest.
type HeaderPredicate func(line string) bool

// nextCodeLine returns the first code line at or after i, or -1.
func (s *Source) nextCodeLine(i int) int {
	if i < 0 {
		i = 0
	}
	for ; i < s.Len(); i++ {
		if s.IsCode(i) {
			return i
		}
	}
	return -1
}

// prevCodeLine returns the last code line strictly before i, or -1.
func (s *Source) prevCodeLine(i int) int {
	if i > s.Len() {
		i = s.Len()
	}
	for j := i - 1; j >= 0; j-- {
		if s.IsCode(j) {
			return j
		}
	}
	return -1
}

// prevSibling returns the logical start of the previous block at the same
// indentation as line i, skipping more deeply indented lines. Returns -1
// when a dedent or the buffer start is reached first.
func (s *Source) prevSibling(i int) int {
	ind := s.Indent(i)
	j := s.prevCodeLine(i)
	for j >= 0 {
		js := s.LogicalStart(j)
		if s.Indent(js) <= ind {
			if s.Indent(js) == ind {
				return js
			}
			return -1
		}
		j = s.prevCodeLine(js)
	}
	return -1
}

// blockEnd returns the exclusive end of the block opened at line i: the
// logical line itself plus every following line indented deeper than i.
// Trailing blank and comment lines are not included.
func (s *Source) blockEnd(i int) int {
	ind := s.Indent(i)
	last := s.LogicalEnd(i)
	j := last + 1
	for j < s.Len() {
		if !s.IsCode(j) {
			j++
			continue
		}
		if s.LogicalStart(j) == j && s.Indent(j) <= ind {
			break
		}
		last = s.LogicalEnd(j)
		j = last + 1
	}
	return last + 1
}

// nextSibling returns the next logical start at exactly indent ind at or
// after line i, or -1 when the next code line dedents or the buffer ends.
func (s *Source) nextSibling(i, ind int) int {
	j := s.nextCodeLine(i)
	if j == -1 {
		return -1
	}
	js := s.LogicalStart(j)
	if s.Indent(js) == ind {
		return js
	}
	return -1
}

// expandStart climbs backward from a statement start while the start line
// is an else/elif-style continuation or a definition preceded by
// decorators. A scan that stops making progress is a navigation failure,
// never an infinite loop.
func (s *Source) expandStart(start int) (int, error) {
	for iter := 0; ; iter++ {
		if iter > s.Len()+1 {
			return 0, fmt.Errorf("%w: statement start never stabilized at line %d", schema.ErrNavigation, start)
		}
		prev := start
		switch s.Kind(start) {
		case schema.LineElseElif:
			sib := s.prevSibling(start)
			if sib >= 0 && sib < start {
				start = sib
			}
		case schema.LineDefHeader, schema.LineClassHeader, schema.LineDecorator:
			p := s.prevCodeLine(start)
			if p >= 0 {
				ps := s.LogicalStart(p)
				if s.Kind(ps) == schema.LineDecorator && s.Indent(ps) == s.Indent(start) {
					start = ps
				}
			}
		}
		if start == prev {
			return start, nil
		}
		if start > prev {
			return 0, fmt.Errorf("%w: statement scan moved forward at line %d", schema.ErrNavigation, prev)
		}
	}
}

// statementEnd walks forward from a statement start through its block and
// any attached else/elif-style continuations. When the statement opens
// with decorators, the block is measured from the decorated header.
func (s *Source) statementEnd(start int) int {
	head := start
	for s.Kind(head) == schema.LineDecorator {
		n := s.nextCodeLine(s.LogicalEnd(head) + 1)
		if n == -1 {
			break
		}
		ns := s.LogicalStart(n)
		if s.Indent(ns) != s.Indent(start) {
			break
		}
		head = ns
		if s.Kind(head) != schema.LineDecorator {
			break
		}
	}
	ind := s.Indent(start)
	end := s.blockEnd(head)
	for {
		sib := s.nextSibling(end, ind)
		if sib == -1 {
			return end
		}
		if s.Kind(sib) != schema.LineElseElif {
			return end
		}
		end = s.blockEnd(sib)
	}
}

// LocateStatement returns the statement containing pos, skipping forward
// to the next code line when pos is on a blank or comment line.
func (s *Source) LocateStatement(pos int) (schema.Block, error) {
	line := pos
	if line < 0 {
		line = 0
	}
	if line >= s.Len() {
		line = s.Len() - 1
	}
	if line < 0 || !s.IsCode(line) {
		line = s.nextCodeLine(line)
		if line == -1 {
			return schema.Block{}, schema.ErrNoActiveBlock
		}
	}
	start, err := s.expandStart(s.LogicalStart(line))
	if err != nil {
		return schema.Block{}, err
	}
	return schema.Block{Kind: schema.BlockStatement, Start: start, End: s.statementEnd(start)}, nil
}

// LocateTopStatement returns the enclosing statement whose first line has
// zero indentation. This is heuristic: constructs whose continuation lines
// are indented less than their statement start will be mis-scoped.
func (s *Source) LocateTopStatement(pos int) (schema.Block, error) {
	b, err := s.LocateStatement(pos)
	if err != nil {
		return schema.Block{}, err
	}
	for iter := 0; s.Indent(b.Start) > 0; iter++ {
		if iter > s.Len()+1 {
			return schema.Block{}, fmt.Errorf("%w: top-level scan never reached column zero", schema.ErrNavigation)
		}
		p := s.prevCodeLine(b.Start)
		if p == -1 {
			return schema.Block{}, schema.ErrNoActiveBlock
		}
		b, err = s.LocateStatement(p)
		if err != nil {
			return schema.Block{}, err
		}
	}
	b.Kind = schema.BlockTopStatement
	return b, nil
}

// LocateDefinition returns the nearest enclosing definition whose header
// satisfies pred. The cursor line is used directly when it matches;
// otherwise the scan walks backward toward the enclosing top statement,
// accepting only headers indented no deeper than any code line crossed
// (ancestors, not siblings). Returns ErrNoActiveBlock when none is found.
func (s *Source) LocateDefinition(pos int, pred HeaderPredicate) (schema.Block, error) {
	line := pos
	if line < 0 || line >= s.Len() {
		return schema.Block{}, schema.ErrNoActiveBlock
	}
	header := -1
	if pred(s.Line(line)) {
		header = s.LogicalStart(line)
	} else {
		top, err := s.LocateTopStatement(pos)
		if err != nil {
			return schema.Block{}, err
		}
		minIndent := -1
		if s.IsCode(line) {
			minIndent = s.Indent(s.LogicalStart(line))
		}
		for j := line - 1; j >= top.Start; j-- {
			if !s.IsCode(j) || s.LogicalStart(j) != j {
				continue
			}
			ind := s.Indent(j)
			if pred(s.Line(j)) && (minIndent == -1 || ind <= minIndent) {
				header = j
				break
			}
			if minIndent == -1 || ind < minIndent {
				minIndent = ind
			}
		}
		if header == -1 {
			return schema.Block{}, schema.ErrNoActiveBlock
		}
	}

	kind := schema.BlockDefun
	if s.Kind(header) == schema.LineClassHeader {
		kind = schema.BlockDefclass
	}
	end := s.blockEnd(header)
	start := header
	// Include immediately preceding decorator lines.
	for {
		p := s.prevCodeLine(start)
		if p == -1 {
			break
		}
		ps := s.LogicalStart(p)
		if s.Kind(ps) != schema.LineDecorator || s.Indent(ps) != s.Indent(header) {
			break
		}
		start = ps
	}
	return schema.Block{Kind: kind, Start: start, End: end}, nil
}

// LocateGroup returns the maximal run of top statements containing pos
// that is unbroken by a standalone blank line. Blank lines interior to a
// multi-line statement do not split a group.
func (s *Source) LocateGroup(pos int) (schema.Block, error) {
	top, err := s.LocateTopStatement(pos)
	if err != nil {
		return schema.Block{}, err
	}
	start, end := top.Start, top.End
	for {
		j := end
		sawBlank := false
		for ; j < s.Len() && !s.IsCode(j); j++ {
			if s.Kind(j) == schema.LineBlank {
				sawBlank = true
			}
		}
		if sawBlank || j >= s.Len() {
			break
		}
		next, err := s.LocateStatement(j)
		if err != nil {
			return schema.Block{}, err
		}
		if next.End <= end {
			return schema.Block{}, fmt.Errorf("%w: group scan made no progress at line %d", schema.ErrNavigation, j)
		}
		end = next.End
	}
	return schema.Block{Kind: schema.BlockGroup, Start: start, End: end}, nil
}

// LocateCell returns the cell containing pos. A cell begins after the
// nearest preceding boundary line, and only when that boundary also
// matches the stricter beginning pattern; it ends before the next
// boundary line or at the buffer end.
func (s *Source) LocateCell(pos int, boundary, beginning *regexp.Regexp) (schema.Block, error) {
	if pos < 0 || pos >= s.Len() {
		return schema.Block{}, schema.ErrNoActiveBlock
	}
	marker := -1
	for j := pos; j >= 0; j-- {
		if boundary.MatchString(s.Line(j)) {
			marker = j
			break
		}
	}
	if marker == -1 || !beginning.MatchString(s.Line(marker)) {
		return schema.Block{}, schema.ErrNoActiveBlock
	}
	end := s.Len()
	for j := marker + 1; j < s.Len(); j++ {
		if boundary.MatchString(s.Line(j)) {
			end = j
			break
		}
	}
	return schema.Block{Kind: schema.BlockCell, Start: marker + 1, End: end}, nil
}
