package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("state_dir", cfg.StateDir)
	v.SetDefault("interpreter.binary", cfg.Interpreter.Binary)
	v.SetDefault("interpreter.args", cfg.Interpreter.Args)
	v.SetDefault("interpreter.env", cfg.Interpreter.Env)
	v.SetDefault("session.workdir_mode", cfg.Session.WorkdirMode)
	v.SetDefault("session.workdir", cfg.Session.WorkDir)
	v.SetDefault("session.dedicated", cfg.Session.Dedicated)
	v.SetDefault("session.prompt_pattern", cfg.Session.PromptPattern)
	v.SetDefault("session.capture_prompt_pattern", cfg.Session.CapturePromptPattern)
	v.SetDefault("session.continuation_prompt", cfg.Session.ContinuationPrompt)
	v.SetDefault("session.traceback_marker", cfg.Session.TracebackMarker)
	v.SetDefault("session.cell_boundary_pattern", cfg.Session.CellBoundaryPattern)
	v.SetDefault("session.cell_beginning_pattern", cfg.Session.CellBeginningPattern)
	v.SetDefault("session.ready_timeout_ms", cfg.Session.ReadyTimeoutMS)
	v.SetDefault("session.ready_interval_ms", cfg.Session.ReadyIntervalMS)
	v.SetDefault("session.transcript_max_lines", cfg.Session.TranscriptMaxLines)
	v.SetDefault("session.history_max", cfg.Session.HistoryMax)
	v.SetDefault("display.echo_input", cfg.Display.EchoInput)
	v.SetDefault("display.echo_output", cfg.Display.EchoOutput)
	v.SetDefault("display.truncate_head", cfg.Display.TruncateHead)
	v.SetDefault("display.truncate_tail", cfg.Display.TruncateTail)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return Config{}, err
			}
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
		if v.GetString("session.workdir_mode") == "fixed" && v.GetString("session.workdir") == "" {
			return Config{}, fmt.Errorf("session.workdir is required when session.workdir_mode is fixed")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	return cfg, nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.StateDir = expandEnv(cfg.StateDir)
	cfg.Interpreter.Binary = expandEnv(cfg.Interpreter.Binary)
	cfg.Session.WorkDir = expandEnv(cfg.Session.WorkDir)
	for key, value := range cfg.Interpreter.Env {
		cfg.Interpreter.Env[key] = expandEnv(value)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
