package transform

import (
	"strings"
	"testing"
)

func TestDetectEncodingDeclaration(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"# -*- coding: latin-1 -*-\nx = 1\n", "latin-1"},
		{"#!/usr/bin/env python\n# coding=cp1252\nx = 1\n", "cp1252"},
		{"x = 1\n", "utf-8"},
		{"x = 1\n# coding: latin-1\n", "utf-8"}, // past line two: ignored
	}
	for _, tc := range cases {
		if got := DetectEncoding([]byte(tc.src)); got != tc.want {
			t.Fatalf("DetectEncoding(%q) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestDecodeSourceLatin1(t *testing.T) {
	src := append([]byte("# -*- coding: latin-1 -*-\ns = '"), 0xE9, '\'', '\n')
	text, name, err := DecodeSource(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if name != "latin-1" {
		t.Fatalf("unexpected encoding name %q", name)
	}
	if !strings.Contains(text, "é") {
		t.Fatalf("expected decoded é in %q", text)
	}
}

func TestDecodeSourceUTF8BOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("x = 1\n")...)
	text, name, err := DecodeSource(src)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if name != "utf-8" || text != "x = 1\n" {
		t.Fatalf("unexpected decode: %q %q", name, text)
	}
}

func TestDecodeSourceUnknownEncoding(t *testing.T) {
	_, _, err := DecodeSource([]byte("# coding: made-up-enc\nx = 1\n"))
	if err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}
