package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"prioq/internal/report"
	"prioq/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List saved runs or show one of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				output = a.cfg.Output
			}

			db, err := store.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if len(args) == 1 {
				run, err := db.GetRun(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				return report.Write(cmd.OutOrStdout(), report.Report{
					RunID:      run.ID,
					Results:    run.Results,
					Statistics: run.Statistics,
				}, output)
			}

			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved runs.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tCREATED\tSOURCE\tTASKS\tMISSED\tTOTAL TIME")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.2f\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Source,
					r.Statistics.TotalTasks, r.Statistics.DeadlineMissed, r.Statistics.TotalExecutionTime)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "max runs to list (0 = all)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "report format for a single run: table | csv | json")
	return cmd
}
