package core

import (
	"reflect"
	"testing"
)

func TestHistorySkipsBlanksAndDuplicates(t *testing.T) {
	h := newHistory(0)
	if h.Append("   ") {
		t.Fatalf("expected blank entry to be skipped")
	}
	if !h.Append("1+1") {
		t.Fatalf("expected entry to be stored")
	}
	if h.Append("1+1") {
		t.Fatalf("expected immediate duplicate to be skipped")
	}
	if !h.Append("x = 2") {
		t.Fatalf("expected distinct entry to be stored")
	}
	if !reflect.DeepEqual(h.Entries(), []string{"1+1", "x = 2"}) {
		t.Fatalf("unexpected entries: %v", h.Entries())
	}
}

func TestHistoryTrimsToMax(t *testing.T) {
	h := newHistory(2)
	h.Append("a")
	h.Append("b")
	h.Append("c")
	if !reflect.DeepEqual(h.Entries(), []string{"b", "c"}) {
		t.Fatalf("unexpected entries: %v", h.Entries())
	}
}

func TestHistoryRestoreHonorsMax(t *testing.T) {
	h := newHistoryFromPersisted([]string{"a", "b", "c"}, 2)
	if !reflect.DeepEqual(h.Entries(), []string{"b", "c"}) {
		t.Fatalf("unexpected restored entries: %v", h.Entries())
	}
}
