package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/repline/internal/format"
	"pkt.systems/repline/schema"
)

func newExecCmd() *cobra.Command {
	var cfgPath string
	var dedicated bool
	var keepMainGuard bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "exec <file>",
		Short: "Execute a whole file in an interpreter session",
		Long:  "Exec loads the file inside the interpreter via a single-line bootstrap command: the interpreter parses the file itself, evaluates a trailing expression separately, and skips the only-run-as-main guard unless --keep-main-guard is set.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, bus, cfg, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			useDedicated := dedicated || cfg.Session.Dedicated
			target := schema.TargetFor(args[0], useDedicated)
			events, cancel := bus.Subscribe(target)
			defer cancel()

			resp, err := svc.SendFile(cmd.Context(), schema.SendFileRequest{
				Path:         args[0],
				Dedicated:    useDedicated,
				RunMainGuard: keepMainGuard,
			})
			if err != nil {
				return err
			}
			if cfg.Display.EchoOutput == string(schema.EchoNever) {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent %s\n", resp.SendID)
				return err
			}
			result, err := awaitResult(cmd.Context(), events, resp.SendID, timeout)
			if err != nil {
				return err
			}
			renderer := format.NewPlainRenderer()
			for _, out := range renderer.FormatResult(result) {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().BoolVar(&dedicated, "dedicated", false, "use a dedicated session for the file")
	cmd.Flags().BoolVar(&keepMainGuard, "keep-main-guard", false, "run the only-run-as-main guard instead of skipping it")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the captured result")
	return cmd
}
