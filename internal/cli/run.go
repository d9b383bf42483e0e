package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prioq/internal/logging"
	"prioq/internal/metrics"
	"prioq/internal/report"
	"prioq/internal/sched"
	"prioq/internal/store"
	"prioq/internal/telemetry"
	"prioq/internal/workload"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		output   string
		csvPath  string
		save     bool
		textfile string
	)

	cmd := &cobra.Command{
		Use:   "run <workload>",
		Short: "Schedule a workload file and print the report",
		Long: `Schedule the tasks in a YAML (.yaml, .yml) or TOML (.toml) workload
file and print every task's start, completion and wait time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("output") {
				output = a.cfg.Output
			}
			if textfile == "" {
				textfile = a.cfg.MetricsTextfile
			}

			tasks, err := workload.Load(args[0])
			if err != nil {
				return err
			}
			a.log.Info("workload loaded", zap.String("path", args[0]), zap.Int("tasks", len(tasks)))

			shutdown, err := telemetry.InitTracer(cmd.Context(), "prioq", a.cfg.OtelEndpoint)
			if err != nil {
				return err
			}
			defer shutdown()

			ctx, span := telemetry.StartSchedule(cmd.Context(), args[0], len(tasks))
			rep, collector, err := a.schedule(ctx, args[0], tasks, save)
			telemetry.EndSchedule(span, rep, err)
			if err != nil {
				return err
			}

			if err := report.Write(cmd.OutOrStdout(), rep, output); err != nil {
				return err
			}
			if csvPath != "" {
				if err := writeCSVFile(csvPath, rep); err != nil {
					return err
				}
			}
			if textfile != "" {
				if err := collector.WriteTextfile(textfile); err != nil {
					return fmt.Errorf("write metrics textfile: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "report format: table | csv | json")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the results as CSV to this file")
	cmd.Flags().BoolVar(&save, "save", false, "store the run in the history database")
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	return cmd
}

// schedule runs tasks, rejects overflowed runs and optionally saves the
// result to history.
func (a *app) schedule(ctx context.Context, source string, tasks []*sched.Task, save bool) (report.Report, *metrics.Collector, error) {
	collector := metrics.NewCollector()
	s := sched.New(sched.WithObserver(sched.Observers{logging.Observer(a.log), collector}))
	rep := report.New("", s.Schedule(tasks))
	if err := rep.Validate(); err != nil {
		return rep, collector, err
	}
	collector.ObserveRun(rep.Results, rep.Statistics)

	if !save {
		return rep, collector, nil
	}
	db, err := store.Open(a.cfg.DBPath)
	if err != nil {
		return rep, collector, err
	}
	defer db.Close()

	run, err := db.SaveRun(ctx, store.Run{
		Source:     source,
		Statistics: rep.Statistics,
		Results:    rep.Results,
	})
	if err != nil {
		return rep, collector, err
	}
	rep.RunID = run.ID
	a.log.Info("run saved", zap.String("run_id", run.ID), zap.String("db", a.cfg.DBPath))
	return rep, collector, nil
}

func writeCSVFile(path string, rep report.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteCSV(f, rep.Results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
