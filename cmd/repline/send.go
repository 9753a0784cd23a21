package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/repline/internal/eventbus"
	"pkt.systems/repline/internal/format"
	"pkt.systems/repline/internal/transform"
	"pkt.systems/repline/schema"
)

func newSendCmd() *cobra.Command {
	var cfgPath string
	var unit string
	var line int
	var text string
	var target string
	var dedicated bool
	var noEcho bool
	var noHistory bool
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "send [file]",
		Short: "Send a block or expression to an interpreter session",
		Long:  "Send locates the block of the requested unit around --line in the file, dedents it, transmits it to the session, and prints the captured result. With --text the given fragment is sent as-is.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, bus, cfg, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			sourcePath := ""
			fragment := text
			if fragment == "" {
				kind, err := parseUnit(unit)
				if err != nil {
					return err
				}
				path, source, err := readSourceArg(cmd, args)
				if err != nil {
					return err
				}
				sourcePath = path
				located, err := svc.LocateBlock(cmd.Context(), schema.LocateBlockRequest{
					Source: source,
					Line:   line,
					Unit:   kind,
				})
				if err != nil {
					return err
				}
				fragment, err = transform.Dedent(located.Text)
				if err != nil {
					return err
				}
			} else if len(args) > 0 {
				sourcePath = args[0]
			}

			useDedicated := dedicated || cfg.Session.Dedicated
			sendTarget := schema.TargetID(target)
			if sendTarget == "" {
				sendTarget = schema.TargetFor(sourcePath, useDedicated)
			}
			events, cancel := bus.Subscribe(sendTarget)
			defer cancel()

			resp, err := svc.Send(cmd.Context(), schema.SendRequest{
				Target:       sendTarget,
				SourcePath:   sourcePath,
				Text:         fragment,
				Dedicated:    useDedicated,
				DisableEcho:  noEcho,
				AddToHistory: !noHistory,
			})
			if err != nil {
				return err
			}
			if cfg.Display.EchoOutput == string(schema.EchoNever) {
				// No capture is attached, so no result will ever flush.
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
	cmd.Flags().StringVarP(&unit, "unit", "u", "statement", "block unit: statement, top-statement, defun, defclass, group, cell")
	cmd.Flags().IntVarP(&line, "line", "l", 0, "zero-based cursor line")
	cmd.Flags().StringVarP(&text, "text", "t", "", "send this fragment instead of locating a block")
	cmd.Flags().StringVar(&target, "target", "", "session target id")
	cmd.Flags().BoolVar(&dedicated, "dedicated", false, "use a dedicated session for the source file")
	cmd.Flags().BoolVar(&noEcho, "no-echo", false, "do not echo the input into the transcript")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record the fragment in session history")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "how long to wait for the captured result")
	return cmd
}

// awaitResult drains bus events until the send's result arrives.
func awaitResult(ctx context.Context, events <-chan eventbus.Event, sendID schema.SendID, timeout time.Duration) (schema.CaptureResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return schema.CaptureResult{}, fmt.Errorf("waiting for result: %w", ctx.Err())
		case event, ok := <-events:
			if !ok {
				return schema.CaptureResult{}, fmt.Errorf("event stream closed before result")
			}
			if event.Type == eventbus.EventResult && event.Result.SendID == sendID {
				return event.Result.Result, nil
			}
			if event.Type == eventbus.EventSession && event.Session.Type == schema.SessionEventKilled {
				return schema.CaptureResult{}, schema.ErrSessionKilled
			}
		}
	}
}
