package pyscan

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"pkt.systems/repline/schema"
)

func src(lines ...string) *Source {
	return NewSource(strings.Join(lines, "\n"))
}

func TestLocateStatementSingleLine(t *testing.T) {
	s := src("x = 1", "y = 2")
	b, err := s.LocateStatement(0)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 1 {
		t.Fatalf("expected [0,1), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateStatementContinuationLines(t *testing.T) {
	s := src(
		"total = (1 +",
		"         2)",
		"print(total)",
	)
	b, err := s.LocateStatement(1)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 2 {
		t.Fatalf("expected [0,2), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateStatementBackslashContinuation(t *testing.T) {
	s := src(
		`x = 1 + \`,
		"    2",
	)
	b, err := s.LocateStatement(1)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 2 {
		t.Fatalf("expected [0,2), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateStatementElifChain(t *testing.T) {
	s := src(
		"if a:",
		"    x()",
		"elif b:",
		"    y()",
		"else:",
		"    z()",
	)
	b, err := s.LocateStatement(4) // cursor on "else:"
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 6 {
		t.Fatalf("expected [0,6), got [%d,%d)", b.Start, b.End)
	}
	// Cursor inside a branch body locates only the body statement.
	b, err = s.LocateStatement(5)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 5 || b.End != 6 {
		t.Fatalf("expected [5,6), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateStatementTryExceptFinally(t *testing.T) {
	s := src(
		"try:",
		"    risky()",
		"except ValueError:",
		"    handle()",
		"finally:",
		"    cleanup()",
		"done()",
	)
	b, err := s.LocateStatement(2)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 6 {
		t.Fatalf("expected [0,6), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateStatementDecoratedDef(t *testing.T) {
	s := src(
		"@deco",
		"@other(arg)",
		"def f():",
		"    return 1",
		"x = 2",
	)
	b, err := s.LocateStatement(2)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 4 {
		t.Fatalf("expected [0,4), got [%d,%d)", b.Start, b.End)
	}
	// Cursor on a decorator line yields the same bounds.
	b, err = s.LocateStatement(0)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 4 {
		t.Fatalf("expected [0,4), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateStatementSkipsForwardFromBlank(t *testing.T) {
	s := src(
		"",
		"# comment",
		"x = 1",
	)
	b, err := s.LocateStatement(0)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 2 || b.End != 3 {
		t.Fatalf("expected [2,3), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateStatementNoCode(t *testing.T) {
	s := src("# only", "", "# comments")
	_, err := s.LocateStatement(0)
	if !errors.Is(err, schema.ErrNoActiveBlock) {
		t.Fatalf("expected ErrNoActiveBlock, got %v", err)
	}
}

func TestLocateTopStatementZeroIndent(t *testing.T) {
	s := src(
		"def f():",
		"    if x:",
		"        y = 1",
		"",
		"    z = 2",
	)
	b, err := s.LocateTopStatement(2)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 {
		t.Fatalf("expected start 0, got %d", b.Start)
	}
	if s.Indent(b.Start) != 0 {
		t.Fatalf("top statement start has indentation %d", s.Indent(b.Start))
	}
	if b.End != 5 {
		t.Fatalf("expected end 5, got %d", b.End)
	}
}

func TestLocateDefinitionFromBody(t *testing.T) {
	s := src(
		"class C:",
		"    def m(self):",
		"        return 1",
		"    x = 2",
	)
	b, err := s.LocateDefinition(2, IsDefHeader)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Kind != schema.BlockDefun || b.Start != 1 || b.End != 3 {
		t.Fatalf("expected defun [1,3), got %v [%d,%d)", b.Kind, b.Start, b.End)
	}

	b, err = s.LocateDefinition(2, IsClassHeader)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Kind != schema.BlockDefclass || b.Start != 0 || b.End != 4 {
		t.Fatalf("expected defclass [0,4), got %v [%d,%d)", b.Kind, b.Start, b.End)
	}
}

func TestLocateDefinitionOnHeaderLine(t *testing.T) {
	s := src(
		"@register",
		"def f():",
		"    return 1",
	)
	b, err := s.LocateDefinition(1, IsDefHeader)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 3 {
		t.Fatalf("expected [0,3) including decorator, got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateDefinitionNotFound(t *testing.T) {
	s := src(
		"x = 1",
		"y = 2",
	)
	_, err := s.LocateDefinition(1, IsDefHeader)
	if !errors.Is(err, schema.ErrNoActiveBlock) {
		t.Fatalf("expected ErrNoActiveBlock, got %v", err)
	}
}

func TestLocateGroupStopsAtBlank(t *testing.T) {
	s := src(
		"a = 1",
		"b = 2",
		"",
		"c = 3",
	)
	b, err := s.LocateGroup(0)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 2 {
		t.Fatalf("expected [0,2), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateGroupIgnoresInteriorBlank(t *testing.T) {
	s := src(
		"d = {",
		"",
		"    'a': 1,",
		"}",
		"e = 2",
	)
	b, err := s.LocateGroup(0)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 5 {
		t.Fatalf("expected [0,5), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateGroupStopsAtBufferEnd(t *testing.T) {
	s := src(
		"a = 1",
		"b = 2",
	)
	b, err := s.LocateGroup(1)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 2 {
		t.Fatalf("expected [0,2), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateCell(t *testing.T) {
	boundary := regexp.MustCompile(schema.DefaultCellBoundaryPattern)
	beginning := regexp.MustCompile(schema.DefaultCellBeginningPattern)
	s := src(
		"setup = 1",     // 0
		"",               // 1
		"# %%",           // 2
		"a = 1",          // 3
		"b = 2",          // 4
		"",               // 5
		"c = 3",          // 6
		"d = 4",          // 7
		"e = 5",          // 8
		"# Out[1]:",      // 9
		"tail = 6",       // 10
	)
	b, err := s.LocateCell(4, boundary, beginning)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 3 || b.End != 9 {
		t.Fatalf("expected [3,9), got [%d,%d)", b.Start, b.End)
	}
}

func TestLocateCellBoundaryWithoutBeginning(t *testing.T) {
	boundary := regexp.MustCompile(schema.DefaultCellBoundaryPattern)
	beginning := regexp.MustCompile(schema.DefaultCellBeginningPattern)
	s := src(
		"# Out[1]:",
		"a = 1",
		"b = 2",
	)
	_, err := s.LocateCell(1, boundary, beginning)
	if !errors.Is(err, schema.ErrNoActiveBlock) {
		t.Fatalf("expected ErrNoActiveBlock, got %v", err)
	}
}

func TestLocateCellNoMarker(t *testing.T) {
	boundary := regexp.MustCompile(schema.DefaultCellBoundaryPattern)
	beginning := regexp.MustCompile(schema.DefaultCellBeginningPattern)
	s := src("a = 1", "b = 2")
	_, err := s.LocateCell(0, boundary, beginning)
	if !errors.Is(err, schema.ErrNoActiveBlock) {
		t.Fatalf("expected ErrNoActiveBlock, got %v", err)
	}
}

func TestSourceTextSpansBlock(t *testing.T) {
	s := src("a = 1", "b = 2", "c = 3")
	got := s.Text(schema.Block{Start: 1, End: 3})
	if got != "b = 2\nc = 3" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestTripleQuotedStringIsOneLogicalLine(t *testing.T) {
	s := src(
		`doc = """`,
		"multi",
		`line"""`,
		"x = 1",
	)
	b, err := s.LocateStatement(1)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if b.Start != 0 || b.End != 3 {
		t.Fatalf("expected [0,3), got [%d,%d)", b.Start, b.End)
	}
}
