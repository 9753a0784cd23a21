package persist

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStoreLoadMissing(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	_, ok, err := store.Load("default")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok {
		t.Fatalf("expected missing snapshot")
	}
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	snapshot := SessionSnapshot{
		Target:    "py/app-abc123",
		Source:    "/src/app.py",
		Dedicated: true,
		Lines:     []string{">>> 1+1", "2"},
		Pending:   ">>> ",
		History:   []string{"1+1"},
	}
	if err := store.Save("py/app-abc123", snapshot); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := store.Load("py/app-abc123")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("expected snapshot to exist")
	}
	if !reflect.DeepEqual(snapshot, got) {
		t.Fatalf("snapshot mismatch:\nwant: %+v\ngot:  %+v", snapshot, got)
	}
}

func TestStoreTargetPathSanitized(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save("py/app-abc123", SessionSnapshot{Target: "py/app-abc123"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "py_app-abc123.json")); err != nil {
		t.Fatalf("expected sanitized snapshot file: %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Save("default", SessionSnapshot{Target: "default"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete("default"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, err := store.Load("default"); err != nil || ok {
		t.Fatalf("expected snapshot gone, ok=%v err=%v", ok, err)
	}
	if err := store.Delete("default"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestStoreLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	path := filepath.Join(dir, "default.json")
	if err := os.WriteFile(path, []byte("{not-json"), 0o600); err != nil {
		t.Fatalf("write bad json: %v", err)
	}
	if _, _, err := store.Load("default"); err == nil {
		t.Fatalf("expected error for invalid JSON")
	}
}
