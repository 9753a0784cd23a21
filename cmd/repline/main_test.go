package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"pkt.systems/repline/schema"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"locate", "send", "exec", "sessions", "config", "version"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected root command to include %s", name)
		}
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		unit string
		want schema.BlockKind
	}{
		{unit: "statement", want: schema.BlockStatement},
		{unit: "top-statement", want: schema.BlockTopStatement},
		{unit: "top", want: schema.BlockTopStatement},
		{unit: "defun", want: schema.BlockDefun},
		{unit: "def", want: schema.BlockDefun},
		{unit: "defclass", want: schema.BlockDefclass},
		{unit: "class", want: schema.BlockDefclass},
		{unit: "group", want: schema.BlockGroup},
		{unit: "cell", want: schema.BlockCell},
	}
	for _, tc := range tests {
		got, err := parseUnit(tc.unit)
		if err != nil {
			t.Fatalf("parseUnit(%q): %v", tc.unit, err)
		}
		if got != tc.want {
			t.Fatalf("parseUnit(%q) = %q, want %q", tc.unit, got, tc.want)
		}
	}
	if _, err := parseUnit("paragraph"); !errors.Is(err, schema.ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
}

func TestStdinConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{answer: "y\n", want: true},
		{answer: "yes\n", want: true},
		{answer: "n\n", want: false},
		{answer: "\n", want: false},
	}
	for _, tc := range tests {
		var prompt bytes.Buffer
		confirm := stdinConfirm(strings.NewReader(tc.answer), &prompt)
		if got := confirm("default"); got != tc.want {
			t.Fatalf("confirm with %q = %v, want %v", tc.answer, got, tc.want)
		}
		if !strings.Contains(prompt.String(), "default") {
			t.Fatalf("expected prompt to name the target, got %q", prompt.String())
		}
	}
}
