package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/repline/core"
	"pkt.systems/repline/internal/appconfig"
	"pkt.systems/repline/internal/eventbus"
	"pkt.systems/repline/internal/pyproc"
	"pkt.systems/repline/schema"
)

// buildService wires the config, interpreter runner, and event bus into a
// core service for one CLI invocation.
func buildService(ctx context.Context, cfgPath string) (core.Service, *eventbus.Bus, appconfig.Config, error) {
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, nil, appconfig.Config{}, err
	}
	logger := pslog.Ctx(ctx)
	runner, err := pyproc.NewRunner(pyproc.Config{
		BinaryPath: cfg.Interpreter.Binary,
		Args:       cfg.Interpreter.Args,
	})
	if err != nil {
		return nil, nil, appconfig.Config{}, err
	}
	bus := eventbus.New(logger)
	svc, err := core.NewService(cfg.ServiceConfig(), core.ServiceDeps{
		Interpreter: runner,
		EventSink:   core.FanoutSink(bus, logSink{log: logger}),
		Logger:      logger,
		Confirm:     stdinConfirm(os.Stdin, os.Stderr),
	})
	if err != nil {
		return nil, nil, appconfig.Config{}, err
	}
	return svc, bus, cfg, nil
}

// stdinConfirm asks per target before a bulk kill proceeds.
func stdinConfirm(in io.Reader, out io.Writer) core.ConfirmFunc {
	return func(target schema.TargetID) bool {
		fmt.Fprintf(out, "kill session %s? [y/N] ", target)
		var answer string
		if _, err := fmt.Fscanln(in, &answer); err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}

// readSourceArg reads the positional source file, or stdin for "-".
func readSourceArg(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", err
		}
		return "", string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", err
	}
	return args[0], string(data), nil
}

// parseUnit maps the --unit flag onto a block kind.
func parseUnit(unit string) (schema.BlockKind, error) {
	switch unit {
	case "statement":
		return schema.BlockStatement, nil
	case "top-statement", "top":
		return schema.BlockTopStatement, nil
	case "defun", "def", "function":
		return schema.BlockDefun, nil
	case "defclass", "class":
		return schema.BlockDefclass, nil
	case "group":
		return schema.BlockGroup, nil
	case "cell":
		return schema.BlockCell, nil
	default:
		return "", fmt.Errorf("%w: %q", schema.ErrUnknownUnit, unit)
	}
}
