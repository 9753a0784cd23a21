package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/repline/internal/format"
	"pkt.systems/repline/schema"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and manage interpreter sessions",
	}
	cmd.AddCommand(newSessionsListCmd())
	cmd.AddCommand(newSessionsKillCmd())
	cmd.AddCommand(newSessionsKillAllCmd())
	cmd.AddCommand(newSessionsTranscriptCmd())
	cmd.AddCommand(newSessionsHistoryCmd())
	return cmd
}

func newSessionsListCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.ListSessions(cmd.Context(), schema.ListSessionsRequest{})
			if err != nil {
				return err
			}
			if len(resp.Sessions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			renderer := format.NewPlainRenderer()
			for _, session := range resp.Sessions {
				fmt.Fprintln(cmd.OutOrStdout(), renderer.FormatSession(session))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}

func newSessionsKillCmd() *cobra.Command {
	var cfgPath string
	var destroy bool
	cmd := &cobra.Command{
		Use:   "kill [target]",
		Short: "Kill one session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			target := schema.TargetDefault
			if len(args) > 0 {
				target = schema.TargetID(args[0])
			}
			resp, err := svc.KillSession(cmd.Context(), schema.KillSessionRequest{
				Target:            target,
				DestroyTranscript: destroy,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "killed %s\n", resp.Session.Target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().BoolVar(&destroy, "destroy", false, "also remove the persisted transcript")
	return cmd
}

func newSessionsKillAllCmd() *cobra.Command {
	var cfgPath string
	var destroy bool
	var yes bool
	cmd := &cobra.Command{
		Use:   "killall",
		Short: "Kill every known session",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.KillAllSessions(cmd.Context(), schema.KillAllSessionsRequest{
				DestroyTranscripts: destroy,
				ConfirmEach:        !yes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "killed %d, skipped %d\n", len(resp.Killed), len(resp.Skipped))
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().BoolVar(&destroy, "destroy", false, "also remove persisted transcripts")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "kill without confirming each session")
	return cmd
}

func newSessionsTranscriptCmd() *cobra.Command {
	var cfgPath string
	var limit int
	cmd := &cobra.Command{
		Use:   "transcript [target]",
		Short: "Print the tail of a session transcript",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			target := schema.TargetDefault
			if len(args) > 0 {
				target = schema.TargetID(args[0])
			}
			resp, err := svc.GetTranscript(cmd.Context(), schema.GetTranscriptRequest{
				Target: target,
				Limit:  limit,
			})
			if err != nil {
				return err
			}
			for _, line := range resp.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most this many trailing lines (0: all)")
	return cmd
}

func newSessionsHistoryCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "Print a session's send history, oldest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, _, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			target := schema.TargetDefault
			if len(args) > 0 {
				target = schema.TargetID(args[0])
			}
			resp, err := svc.GetHistory(cmd.Context(), schema.GetHistoryRequest{Target: target})
			if err != nil {
				return err
			}
			for _, entry := range resp.Entries {
				fmt.Fprintln(cmd.OutOrStdout(), entry)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	return cmd
}
