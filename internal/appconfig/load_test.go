package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/repline/schema"
)

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 99
interpreter:
  binary: python3
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadRejectsFixedWorkdirWithoutDirectory(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
session:
  workdir_mode: fixed
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "session.workdir") {
		t.Fatalf("expected workdir error, got %v", err)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Interpreter.Binary != "python3" {
		t.Fatalf("expected default binary, got %q", cfg.Interpreter.Binary)
	}
	if cfg.Session.PromptPattern != schema.DefaultPromptPattern {
		t.Fatalf("expected default prompt pattern, got %q", cfg.Session.PromptPattern)
	}
	if cfg.Session.CapturePromptPattern != schema.DefaultCapturePromptPattern {
		t.Fatalf("expected default capture prompt pattern, got %q", cfg.Session.CapturePromptPattern)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
interpreter:
  binary: ipython
  args: ["-i"]
session:
  dedicated: true
  ready_timeout_ms: 500
display:
  echo_output: never
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Interpreter.Binary != "ipython" || len(cfg.Interpreter.Args) != 1 {
		t.Fatalf("unexpected interpreter config: %+v", cfg.Interpreter)
	}
	svc := cfg.ServiceConfig()
	if !svc.DedicatedSessions {
		t.Fatalf("expected dedicated sessions")
	}
	if svc.ReadyTimeout != 500*time.Millisecond {
		t.Fatalf("unexpected ready timeout: %v", svc.ReadyTimeout)
	}
	if svc.EchoOutput != schema.EchoNever {
		t.Fatalf("unexpected echo output: %q", svc.EchoOutput)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	value := expandEnv("$FOO/$UID/$GID/$MISSING")
	if !strings.HasPrefix(value, "bar/") {
		t.Fatalf("expected env expansion, got %q", value)
	}
	if strings.Contains(value, "$UID") || strings.Contains(value, "$GID") {
		t.Fatalf("expected UID/GID expansion, got %q", value)
	}
	if !strings.HasSuffix(value, "/$MISSING") {
		t.Fatalf("expected missing vars to remain, got %q", value)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected path %q, got %q", path, written)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config to exist: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
