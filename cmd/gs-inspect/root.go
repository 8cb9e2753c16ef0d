package main

import (
	"GraphSpectra/internal/engine/writer"
	"GraphSpectra/internal/heuristics"
	"GraphSpectra/internal/heuristics/statistic"
	"GraphSpectra/internal/snapshot"
	"fmt"

	"github.com/spf13/cobra"
)

type inspectOptions struct {
	params statistic.Parameters
}

func newRootCmd() *cobra.Command {
	opts := &inspectOptions{params: statistic.DefaultParameters()}

	root := &cobra.Command{
		Use:          "gs-inspect",
		Short:        "Inspect GraphSpectra statistics snapshots",
		SilenceUsage: true,
	}
	root.PersistentFlags().Float64Var(&opts.params.EqualityTolerance, "tolerance", opts.params.EqualityTolerance, "equality tolerance of the restored estimators")
	root.PersistentFlags().IntVar(&opts.params.WindowSize, "window-size", opts.params.WindowSize, "rolling average window of the restored estimators")

	root.AddCommand(newShowCmd(opts), newDegreeCmd(opts), newListCmd(opts))
	return root
}

func newShowCmd(opts *inspectOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print every statistic held in a gob snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := snapshot.ReadFile(args[0], opts.params)
			if err != nil {
				return err
			}
			return writer.Dump(cmd.OutOrStdout(), c)
		},
	}
}

func newDegreeCmd(opts *inspectOptions) *cobra.Command {
	var (
		label     int
		relType   int
		direction string
	)
	cmd := &cobra.Command{
		Use:   "degree <file>",
		Short: "Print one degree estimate from a gob snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := heuristics.ParseDirection(direction)
			if err != nil {
				return err
			}
			if relType < 0 {
				return fmt.Errorf("--type must be non-negative")
			}
			if label < heuristics.AnyLabel {
				return fmt.Errorf("--label must be non-negative, or -1 for any label")
			}
			c, err := snapshot.ReadFile(args[0], opts.params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6f (%d samples)\n",
				c.Degree(label, relType, dir), c.DegreeSamples(label, relType, dir))
			return nil
		},
	}
	cmd.Flags().IntVar(&label, "label", heuristics.AnyLabel, "label id, -1 for any label")
	cmd.Flags().IntVar(&relType, "type", 0, "relationship type id")
	cmd.Flags().StringVar(&direction, "direction", "both", "incoming, outgoing or both")
	cmd.MarkFlagRequired("type")
	return cmd
}

func newListCmd(opts *inspectOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <root>",
		Short: "List complete snapshots under a writer root path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := snapshot.NewStore(args[0], opts.params, 1)
			if err != nil {
				return err
			}
			timestamps, err := store.List()
			if err != nil {
				return err
			}
			for _, ts := range timestamps {
				summary, err := store.Summary(ts)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d live\t%d skipped\t%s\n",
					ts, summary.LiveNodes, summary.SkippedNodes, summary.Fingerprint)
			}
			return nil
		},
	}
}
