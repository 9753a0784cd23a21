package core

import (
	"strings"
	"testing"

	"pkt.systems/repline/schema"
)

func TestEchoActiveModes(t *testing.T) {
	cases := []struct {
		mode    schema.EchoMode
		visible bool
		want    bool
	}{
		{schema.EchoAlways, true, true},
		{schema.EchoAlways, false, true},
		{schema.EchoNever, false, false},
		{schema.EchoAuto, true, false},
		{schema.EchoAuto, false, true},
	}
	for _, tc := range cases {
		if got := echoActive(tc.mode, tc.visible); got != tc.want {
			t.Fatalf("echoActive(%q, %v) = %v, want %v", tc.mode, tc.visible, got, tc.want)
		}
	}
}

func TestEchoDisplayTextDedentsAndTruncates(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("    line\n")
	}
	display := echoDisplayText(b.String(), 2, 2)
	lines := strings.Split(display, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 2+marker+2 lines, got %d: %q", len(lines), display)
	}
	if lines[0] != "line" {
		t.Fatalf("expected dedented first line, got %q", lines[0])
	}
	if lines[2] != "..." {
		t.Fatalf("expected ellipsis marker, got %q", lines[2])
	}
}

func TestEchoDisplayTextFallsBackOnRaggedIndent(t *testing.T) {
	text := "    a = 1\n  b = 2\n"
	display := echoDisplayText(text, 10, 10)
	if display != "    a = 1\n  b = 2" {
		t.Fatalf("expected raw text on dedent failure, got %q", display)
	}
}
