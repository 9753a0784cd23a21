// Package pyproc spawns interactive interpreter processes and exposes
// their combined stdout/stderr as a raw chunk stream. It implements
// core.Interpreter.
package pyproc

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"pkt.systems/pslog"
	"pkt.systems/repline/core"
)

// killGrace is how long a closed process gets to exit before the whole
// process group is killed.
const killGrace = 5 * time.Second

// Config controls how the interpreter is invoked.
type Config struct {
	BinaryPath string
	Args       []string
	Env        []string
}

// Runner implements core.Interpreter.
type Runner struct {
	cfg Config
}

// NewRunner constructs an interpreter runner.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "python3"
	}
	if len(cfg.Args) == 0 {
		cfg.Args = []string{"-i", "-u"}
	}
	return &Runner{cfg: cfg}, nil
}

// Start spawns one interpreter process in its own process group. The
// process is intentionally not bound to ctx: sessions outlive the request
// that spawned them.
func (r *Runner) Start(ctx context.Context, req core.StartRequest) (core.ProcessHandle, error) {
	log := pslog.Ctx(ctx)
	binary, args := r.invocation(req)
	cmd := exec.Command(binary, args...)
	if req.WorkingDir != "" {
		cmd.Dir = req.WorkingDir
	}
	cmd.Env = buildEnv(r.cfg.Env, req.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		if log != nil {
			log.Error("interpreter stdin failed", "err", err)
		}
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		if log != nil {
			log.Error("interpreter stdout failed", "err", err)
		}
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		if log != nil {
			log.Error("interpreter stderr failed", "err", err)
		}
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		if log != nil {
			log.Error("interpreter start failed", "binary", binary, "err", err)
		}
		return nil, err
	}
	if log != nil {
		log.Info("interpreter spawned", "binary", binary, "pid", cmd.Process.Pid, "workdir", req.WorkingDir)
	}

	handle := &processHandle{
		cmd:      cmd,
		stdin:    stdin,
		stream:   newChunkStream(stdout, stderr, log),
		log:      log,
		started:  time.Now(),
		waitDone: make(chan struct{}),
	}
	return handle, nil
}

// invocation resolves the binary and args for one start: the request's
// service-configured invocation wins over the runner's own config.
func (r *Runner) invocation(req core.StartRequest) (string, []string) {
	binary := r.cfg.BinaryPath
	if req.Binary != "" {
		binary = req.Binary
	}
	args := r.cfg.Args
	if len(req.Args) > 0 {
		args = req.Args
	}
	return binary, args
}

// buildEnv merges the process environment with runner and request extras,
// in that order of increasing precedence.
func buildEnv(cfgEnv, reqEnv []string) []string {
	env := append([]string(nil), os.Environ()...)
	env = append(env, cfgEnv...)
	env = append(env, reqEnv...)
	return env
}

type processHandle struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stream  *chunkStream
	log     pslog.Logger
	started time.Time

	sendMu    sync.Mutex
	closeOnce sync.Once

	waitOnce sync.Once
	waitDone chan struct{}
	waitErr  error
}

func (h *processHandle) Pid() int {
	if h.cmd == nil || h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// Send writes text to the interpreter's stdin. Writes are serialized so
// concurrent callers cannot interleave payload bytes.
func (h *processHandle) Send(text string) error {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()
	_, err := io.WriteString(h.stdin, text)
	return err
}

func (h *processHandle) Output() core.OutputStream {
	return h.stream
}

// Signal delivers sig to the whole process group, reaching children the
// interpreter may have forked.
func (h *processHandle) Signal(ctx context.Context, sig core.ProcessSignal) error {
	_ = ctx
	if h.cmd == nil || h.cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	var signo unix.Signal
	switch sig {
	case core.ProcessSignalHUP:
		signo = unix.SIGHUP
	case core.ProcessSignalTERM:
		signo = unix.SIGTERM
	case core.ProcessSignalKILL:
		signo = unix.SIGKILL
	default:
		return fmt.Errorf("unsupported signal: %s", sig)
	}
	if err := unix.Kill(-h.cmd.Process.Pid, signo); err != nil {
		// Fall back to the process itself when the group is already gone.
		return h.cmd.Process.Signal(syscall.Signal(signo))
	}
	return nil
}

// Wait blocks until the process exits or ctx is done.
func (h *processHandle) Wait(ctx context.Context) (core.RunResult, error) {
	h.reap()
	select {
	case <-ctx.Done():
		return core.RunResult{}, ctx.Err()
	case <-h.waitDone:
	}
	err := h.waitErr
	exitCode := 0
	signal := ""
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			if h.log != nil {
				h.log.Error("interpreter wait failed", "err", err)
			}
			return core.RunResult{}, err
		}
		exitCode = exitErr.ExitCode()
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			signal = status.Signal().String()
		}
	}
	if h.log != nil {
		fields := []any{
			"exit_code", exitCode,
			"duration_ms", time.Since(h.started).Milliseconds(),
		}
		if signal != "" {
			fields = append(fields, "signal", signal)
		}
		h.log.Info("interpreter finished", fields...)
	}
	return core.RunResult{ExitCode: exitCode}, nil
}

// Close shuts stdin, stops the stream, and reaps the process, escalating
// to SIGKILL on the process group after a grace period.
func (h *processHandle) Close() error {
	h.closeOnce.Do(func() {
		_ = h.stdin.Close()
		_ = h.stream.Close()
		h.reap()
		go func() {
			select {
			case <-h.waitDone:
			case <-time.After(killGrace):
				if h.cmd.Process != nil {
					_ = unix.Kill(-h.cmd.Process.Pid, unix.SIGKILL)
				}
			}
		}()
	})
	return nil
}

// reap runs cmd.Wait exactly once in the background.
func (h *processHandle) reap() {
	h.waitOnce.Do(func() {
		go func() {
			h.waitErr = h.cmd.Wait()
			close(h.waitDone)
		}()
	})
}
