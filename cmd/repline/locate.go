package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/repline/internal/format"
	"pkt.systems/repline/schema"
)

func newLocateCmd() *cobra.Command {
	var cfgPath string
	var unit string
	var line int
	var rangeOnly bool
	cmd := &cobra.Command{
		Use:   "locate [file]",
		Short: "Locate the block around a cursor line",
		Long:  "Locate prints the block of the requested unit around the cursor line. Reads the file argument, or stdin when the argument is missing or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseUnit(unit)
			if err != nil {
				return err
			}
			_, source, err := readSourceArg(cmd, args)
			if err != nil {
				return err
			}
			svc, _, _, err := buildService(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			resp, err := svc.LocateBlock(cmd.Context(), schema.LocateBlockRequest{
				Source: source,
				Line:   line,
				Unit:   kind,
			})
			if err != nil {
				return err
			}
			if rangeOnly {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", resp.Block.Start, resp.Block.End)
				return err
			}
			renderer := format.NewPlainRenderer()
			for _, out := range renderer.FormatBlock(resp.Block, resp.Text) {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file path")
	cmd.Flags().StringVarP(&unit, "unit", "u", "statement", "block unit: statement, top-statement, defun, defclass, group, cell")
	cmd.Flags().IntVarP(&line, "line", "l", 0, "zero-based cursor line")
	cmd.Flags().BoolVar(&rangeOnly, "range", false, "print only the half-open line range")
	return cmd
}
