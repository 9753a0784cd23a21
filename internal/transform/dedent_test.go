package transform

import (
	"errors"
	"strings"
	"testing"

	"pkt.systems/repline/schema"
)

func TestDedentRemovesCommonIndent(t *testing.T) {
	in := "    if x:\n        y()\n"
	got, err := Dedent(in)
	if err != nil {
		t.Fatalf("dedent: %v", err)
	}
	if got != "if x:\n    y()\n" {
		t.Fatalf("unexpected dedent: %q", got)
	}
}

func TestDedentShiftIdentity(t *testing.T) {
	original := "if x:\n    y()\n    # note\n    z()"
	shifted := ""
	for i, line := range strings.Split(original, "\n") {
		if i > 0 {
			shifted += "\n"
		}
		shifted += "    " + line
	}
	got, err := Dedent(shifted)
	if err != nil {
		t.Fatalf("dedent: %v", err)
	}
	if got != original {
		t.Fatalf("dedent(shift(x)) != x:\n%q\n%q", got, original)
	}
}

func TestDedentRejectsInconsistentBlock(t *testing.T) {
	in := "    if x:\n  y()\n"
	_, err := Dedent(in)
	if !errors.Is(err, schema.ErrMalformedBlock) {
		t.Fatalf("expected ErrMalformedBlock, got %v", err)
	}
}

func TestDedentNormalizesTabs(t *testing.T) {
	got, err := Dedent("\tx = 1\n\t\ty = 2")
	if err != nil {
		t.Fatalf("dedent: %v", err)
	}
	if got != "x = 1\n        y = 2" {
		t.Fatalf("unexpected tab handling: %q", got)
	}
}

func TestDedentNoopAtColumnZero(t *testing.T) {
	in := "x = 1\n    y = 2"
	got, err := Dedent(in)
	if err != nil {
		t.Fatalf("dedent: %v", err)
	}
	if got != in {
		t.Fatalf("expected unchanged text, got %q", got)
	}
}
