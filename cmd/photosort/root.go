package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photosort/internal/logging"
	"photosort/internal/sorter"
)

func newRootCommand() *cobra.Command {
	var flags sortFlags

	rootCmd := &cobra.Command{
		Use:           "photosort [flags] <source> <destination>",
		Short:         "Sort a photo dump into events by capture date",
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig(cmd, args)
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			s := sorter.New(cfg, sorter.WithLogger(logger))
			bg := s.Start(cmd.Context())

			out := cmd.OutOrStdout()
			for msg := range bg.Progress() {
				fmt.Fprintln(out, msg)
			}
			res, err := bg.Wait()
			if err != nil {
				if res.RunID != "" && !sorter.IsConfiguration(err) {
					fmt.Fprintln(out, renderSummary(out, res))
				}
				return err
			}

			fmt.Fprintln(out, renderSummary(out, res))
			if details := renderDetails(out, res); details != "" {
				fmt.Fprintln(out, details)
			}
			return nil
		},
	}

	flags.register(rootCmd)
	rootCmd.AddCommand(newCheckCommand(&flags))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
