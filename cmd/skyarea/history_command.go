package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"skyarea/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded skyarea runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 shows all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func renderHistory(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		area90 := "-"
		for _, a := range run.Areas {
			if a.Level == 0.9 {
				area90 = numberPrinter.Sprintf("%.1f", a.Area)
			}
		}
		pValue := "-"
		if run.PValue != nil {
			pValue = fmt.Sprintf("%.4f", *run.PValue)
		}
		rows = append(rows, []string{
			shortDigest(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			numberPrinter.Sprintf("%d", run.UsedPoints),
			fmt.Sprintf("%d", run.Clusters),
			yesNo(run.LoadedPosterior),
			area90,
			pValue,
			run.SamplesPath,
		})
	}
	return renderTable(
		"Run history",
		[]string{"Run", "Started", "Points", "K", "Loaded", "90% area", "p-value", "Samples"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}
