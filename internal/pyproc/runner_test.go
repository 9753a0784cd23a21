package pyproc

import (
	"strings"
	"testing"

	"pkt.systems/repline/core"
)

func TestNewRunnerDefaults(t *testing.T) {
	runner, err := NewRunner(Config{})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if runner.cfg.BinaryPath != "python3" {
		t.Fatalf("unexpected binary: %q", runner.cfg.BinaryPath)
	}
	if len(runner.cfg.Args) != 2 || runner.cfg.Args[0] != "-i" || runner.cfg.Args[1] != "-u" {
		t.Fatalf("unexpected args: %v", runner.cfg.Args)
	}
}

func TestNewRunnerKeepsExplicitConfig(t *testing.T) {
	runner, err := NewRunner(Config{BinaryPath: "pypy3", Args: []string{"-i"}})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	if runner.cfg.BinaryPath != "pypy3" || len(runner.cfg.Args) != 1 {
		t.Fatalf("config not preserved: %+v", runner.cfg)
	}
}

func TestStartRequestOverridesInvocation(t *testing.T) {
	runner, err := NewRunner(Config{})
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	binary, args := runner.invocation(core.StartRequest{Binary: "pypy3", Args: []string{"-i", "-q"}})
	if binary != "pypy3" {
		t.Fatalf("expected request binary to win, got %q", binary)
	}
	if len(args) != 2 || args[0] != "-i" || args[1] != "-q" {
		t.Fatalf("expected request args to win, got %v", args)
	}
	binary, args = runner.invocation(core.StartRequest{})
	if binary != "python3" || len(args) != 2 {
		t.Fatalf("expected runner defaults, got %q %v", binary, args)
	}
}

func TestBuildEnvOrdersPrecedence(t *testing.T) {
	env := buildEnv([]string{"PYTHONSTARTUP=/etc/startup.py"}, []string{"PYTHONPATH=/src"})
	joined := strings.Join(env, "\n")
	if !strings.Contains(joined, "PYTHONSTARTUP=/etc/startup.py") {
		t.Fatalf("missing runner env entry")
	}
	if !strings.HasSuffix(env[len(env)-1], "PYTHONPATH=/src") {
		t.Fatalf("request env must come last, got %q", env[len(env)-1])
	}
}
