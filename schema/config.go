package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// EchoMode controls when input or output is echoed into the transcript.
type EchoMode string

const (
	// EchoAlways echoes unconditionally.
	EchoAlways EchoMode = "always"
	// EchoNever disables echoing.
	EchoNever EchoMode = "never"
	// EchoAuto echoes only when the session transcript is not visible.
	EchoAuto EchoMode = "auto"
)

// WorkdirMode selects how a session's working directory is resolved.
type WorkdirMode string

const (
	// WorkdirSourceDir resolves to the directory of the source file.
	WorkdirSourceDir WorkdirMode = "source-dir"
	// WorkdirCwd resolves to the current working directory.
	WorkdirCwd WorkdirMode = "cwd"
	// WorkdirFixed uses ServiceConfig.WorkDir verbatim.
	WorkdirFixed WorkdirMode = "fixed"
)

// ServiceConfig defines defaults and limits for the core service.
type ServiceConfig struct {
	InterpreterPath string
	InterpreterArgs []string
	Env             []string

	WorkdirMode WorkdirMode
	WorkDir     string
	StateDir    string

	// PromptPattern matches any interpreter prompt at the end of arbitrary
	// trailing text and drives at-prompt detection. CapturePromptPattern
	// matches only the top-level prompt that follows a completed execution;
	// a capture flushes when it appears. Continuation prompts appear while
	// the interpreter is still consuming input and must never terminate a
	// capture. ContinuationPrompt prefixes echoed multi-line input after
	// the first line.
	PromptPattern        string
	CapturePromptPattern string
	ContinuationPrompt   string
	TracebackMarker      string

	// CellBeginningPattern must match a subset of CellBoundaryPattern.
	CellBoundaryPattern  string
	CellBeginningPattern string

	TruncateHead int
	TruncateTail int

	ReadyTimeout  time.Duration
	ReadyInterval time.Duration

	TranscriptMaxLines int
	HistoryMax         int

	DedicatedSessions bool
	EchoInput         EchoMode
	EchoOutput        EchoMode
}

// Defaults for ServiceConfig fields.
const (
	DefaultPromptPattern        = `(>>> |\.\.\. )$`
	DefaultCapturePromptPattern = `>>> $`
	DefaultContinuationPrompt   = "... "
	DefaultTracebackMarker      = "Traceback (most recent call last)"
	DefaultCellBoundaryPattern  = `^\s*#\s*(%%|<codecell>|In\[[^\]]*\]:?|Out\[[^\]]*\]:?)`
	DefaultCellBeginningPattern = `^\s*#\s*(%%|<codecell>|In\[[^\]]*\]:?)`
	DefaultTruncateHead         = 10
	DefaultTruncateTail         = 10
	DefaultReadyTimeout         = 3 * time.Second
	DefaultReadyInterval        = 50 * time.Millisecond
	DefaultTranscriptMaxLines   = 5000
	DefaultHistoryMax           = 200
)

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	if cfg.InterpreterPath == "" {
		cfg.InterpreterPath = "python3"
	}
	if len(cfg.InterpreterArgs) == 0 {
		cfg.InterpreterArgs = []string{"-i", "-u"}
	}
	if cfg.WorkdirMode == "" {
		cfg.WorkdirMode = WorkdirSourceDir
	}
	switch cfg.WorkdirMode {
	case WorkdirSourceDir, WorkdirCwd:
	case WorkdirFixed:
		if cfg.WorkDir == "" {
			return ServiceConfig{}, fmt.Errorf("%w: workdir mode %q requires a directory", ErrConfiguration, cfg.WorkdirMode)
		}
	default:
		return ServiceConfig{}, fmt.Errorf("%w: unknown workdir mode %q", ErrConfiguration, cfg.WorkdirMode)
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ServiceConfig{}, err
		}
		cfg.StateDir = filepath.Join(home, ".repline", "state")
	}
	if cfg.PromptPattern == "" {
		cfg.PromptPattern = DefaultPromptPattern
	}
	if cfg.CapturePromptPattern == "" {
		cfg.CapturePromptPattern = DefaultCapturePromptPattern
	}
	if cfg.ContinuationPrompt == "" {
		cfg.ContinuationPrompt = DefaultContinuationPrompt
	}
	if cfg.TracebackMarker == "" {
		cfg.TracebackMarker = DefaultTracebackMarker
	}
	if cfg.CellBoundaryPattern == "" {
		cfg.CellBoundaryPattern = DefaultCellBoundaryPattern
	}
	if cfg.CellBeginningPattern == "" {
		cfg.CellBeginningPattern = DefaultCellBeginningPattern
	}
	for _, pattern := range []string{cfg.PromptPattern, cfg.CapturePromptPattern, cfg.CellBoundaryPattern, cfg.CellBeginningPattern} {
		if _, err := regexp.Compile(pattern); err != nil {
			return ServiceConfig{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
	}
	if cfg.TruncateHead <= 0 {
		cfg.TruncateHead = DefaultTruncateHead
	}
	if cfg.TruncateTail <= 0 {
		cfg.TruncateTail = DefaultTruncateTail
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if cfg.ReadyInterval <= 0 {
		cfg.ReadyInterval = DefaultReadyInterval
	}
	if cfg.TranscriptMaxLines <= 0 {
		cfg.TranscriptMaxLines = DefaultTranscriptMaxLines
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultHistoryMax
	}
	if cfg.EchoInput == "" {
		cfg.EchoInput = EchoAuto
	}
	if cfg.EchoOutput == "" {
		cfg.EchoOutput = EchoAuto
	}
	for _, mode := range []EchoMode{cfg.EchoInput, cfg.EchoOutput} {
		switch mode {
		case EchoAlways, EchoNever, EchoAuto:
		default:
			return ServiceConfig{}, fmt.Errorf("%w: unknown echo mode %q", ErrConfiguration, mode)
		}
	}
	return cfg, nil
}
