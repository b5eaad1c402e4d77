package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"photosort/internal/sorter"
)

func newCheckCommand(flags *sortFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check [<source> <destination>]",
		Short: "Run pre-flight checks without touching the destination",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd, args)
			if err != nil {
				return err
			}

			plan, err := sorter.New(cfg).Preflight()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Source", plan.RequestedSource},
				{"Effective source", plan.Source},
				{"Destination", plan.Destination},
				{"Destination exists", yesNo(plan.DestinationExists)},
				{"Files", humanize.Comma(int64(plan.FileCount))},
				{"Sort remaining", yesNo(cfg.Sorting.SortRemainder)},
			}
			if cfg.Manifest.Path != "" {
				rows = append(rows, []string{"Manifest", cfg.Manifest.Path})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Check", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			fmt.Fprintln(out, "Ready to sort")
			return nil
		},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
