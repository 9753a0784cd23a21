package appconfig

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"pkt.systems/repline/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int               `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string            `mapstructure:"state_dir" yaml:"state_dir"`
	Interpreter   InterpreterConfig `mapstructure:"interpreter" yaml:"interpreter"`
	Session       SessionConfig     `mapstructure:"session" yaml:"session"`
	Display       DisplayConfig     `mapstructure:"display" yaml:"display"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// InterpreterConfig controls how the interpreter process is invoked.
type InterpreterConfig struct {
	Binary string            `mapstructure:"binary" yaml:"binary"`
	Args   []string          `mapstructure:"args" yaml:"args"`
	Env    map[string]string `mapstructure:"env" yaml:"env"`
}

// SessionConfig controls session behavior and prompt detection.
type SessionConfig struct {
	WorkdirMode          string `mapstructure:"workdir_mode" yaml:"workdir_mode"`
	WorkDir              string `mapstructure:"workdir" yaml:"workdir"`
	Dedicated            bool   `mapstructure:"dedicated" yaml:"dedicated"`
	PromptPattern        string `mapstructure:"prompt_pattern" yaml:"prompt_pattern"`
	CapturePromptPattern string `mapstructure:"capture_prompt_pattern" yaml:"capture_prompt_pattern"`
	ContinuationPrompt   string `mapstructure:"continuation_prompt" yaml:"continuation_prompt"`
	TracebackMarker      string `mapstructure:"traceback_marker" yaml:"traceback_marker"`
	CellBoundaryPattern  string `mapstructure:"cell_boundary_pattern" yaml:"cell_boundary_pattern"`
	CellBeginningPattern string `mapstructure:"cell_beginning_pattern" yaml:"cell_beginning_pattern"`
	ReadyTimeoutMS       int    `mapstructure:"ready_timeout_ms" yaml:"ready_timeout_ms"`
	ReadyIntervalMS      int    `mapstructure:"ready_interval_ms" yaml:"ready_interval_ms"`
	TranscriptMaxLines   int    `mapstructure:"transcript_max_lines" yaml:"transcript_max_lines"`
	HistoryMax           int    `mapstructure:"history_max" yaml:"history_max"`
}

// DisplayConfig controls transcript echo behavior.
type DisplayConfig struct {
	EchoInput    string `mapstructure:"echo_input" yaml:"echo_input"`
	EchoOutput   string `mapstructure:"echo_output" yaml:"echo_output"`
	TruncateHead int    `mapstructure:"truncate_head" yaml:"truncate_head"`
	TruncateTail int    `mapstructure:"truncate_tail" yaml:"truncate_tail"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".repline", "state"),
		Interpreter: InterpreterConfig{
			Binary: "python3",
			Args:   []string{"-i", "-u"},
			Env:    map[string]string{},
		},
		Session: SessionConfig{
			WorkdirMode:          string(schema.WorkdirSourceDir),
			Dedicated:            false,
			PromptPattern:        schema.DefaultPromptPattern,
			CapturePromptPattern: schema.DefaultCapturePromptPattern,
			ContinuationPrompt:   schema.DefaultContinuationPrompt,
			TracebackMarker:      schema.DefaultTracebackMarker,
			CellBoundaryPattern:  schema.DefaultCellBoundaryPattern,
			CellBeginningPattern: schema.DefaultCellBeginningPattern,
			ReadyTimeoutMS:       int(schema.DefaultReadyTimeout / time.Millisecond),
			ReadyIntervalMS:      int(schema.DefaultReadyInterval / time.Millisecond),
			TranscriptMaxLines:   schema.DefaultTranscriptMaxLines,
			HistoryMax:           schema.DefaultHistoryMax,
		},
		Display: DisplayConfig{
			EchoInput:    string(schema.EchoAuto),
			EchoOutput:   string(schema.EchoAuto),
			TruncateHead: schema.DefaultTruncateHead,
			TruncateTail: schema.DefaultTruncateTail,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".repline", "config.yaml"), nil
}

// ServiceConfig maps the application config onto the core service config.
func (c Config) ServiceConfig() schema.ServiceConfig {
	keys := make([]string, 0, len(c.Interpreter.Env))
	for key := range c.Interpreter.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, key := range keys {
		env = append(env, key+"="+c.Interpreter.Env[key])
	}
	return schema.ServiceConfig{
		InterpreterPath:      c.Interpreter.Binary,
		InterpreterArgs:      append([]string(nil), c.Interpreter.Args...),
		Env:                  env,
		WorkdirMode:          schema.WorkdirMode(c.Session.WorkdirMode),
		WorkDir:              c.Session.WorkDir,
		StateDir:             c.StateDir,
		PromptPattern:        c.Session.PromptPattern,
		CapturePromptPattern: c.Session.CapturePromptPattern,
		ContinuationPrompt:   c.Session.ContinuationPrompt,
		TracebackMarker:      c.Session.TracebackMarker,
		CellBoundaryPattern:  c.Session.CellBoundaryPattern,
		CellBeginningPattern: c.Session.CellBeginningPattern,
		TruncateHead:         c.Display.TruncateHead,
		TruncateTail:         c.Display.TruncateTail,
		ReadyTimeout:         time.Duration(c.Session.ReadyTimeoutMS) * time.Millisecond,
		ReadyInterval:        time.Duration(c.Session.ReadyIntervalMS) * time.Millisecond,
		TranscriptMaxLines:   c.Session.TranscriptMaxLines,
		HistoryMax:           c.Session.HistoryMax,
		DedicatedSessions:    c.Session.Dedicated,
		EchoInput:            schema.EchoMode(c.Display.EchoInput),
		EchoOutput:           schema.EchoMode(c.Display.EchoOutput),
	}
}
