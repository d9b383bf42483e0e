// Package report renders scheduling results for people and for other tools.
package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"prioq/internal/sched"
)

// Report is a finished run as handed to a presentation layer.
type Report struct {
	RunID      string           `json:"run_id,omitempty"`
	Results    []sched.Result   `json:"results"`
	Statistics sched.Statistics `json:"statistics"`
}

// New summarizes results into a Report.
func New(runID string, results []sched.Result) Report {
	if results == nil {
		results = []sched.Result{}
	}
	return Report{
		RunID:      runID,
		Results:    results,
		Statistics: sched.Summarize(results),
	}
}

// ErrNonFinite is returned by Validate when a run's times overflowed.
var ErrNonFinite = errors.New("schedule produced a non-finite time")

// Validate checks that every time and statistic in the report is a finite
// number. JSON can't encode anything else.
func (r Report) Validate() error {
	st := r.Statistics
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"total_execution_time", st.TotalExecutionTime},
		{"average_wait_time", st.AverageWaitTime},
		{"throughput", st.Throughput},
	} {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s", ErrNonFinite, f.name)
		}
	}
	for _, res := range r.Results {
		if !finite(res.StartTime) || !finite(res.CompletionTime) || !finite(res.WaitTime) {
			return fmt.Errorf("%w: task %s", ErrNonFinite, res.TaskID)
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Write renders the report in the named format: table, csv or json.
func Write(w io.Writer, r Report, format string) error {
	switch format {
	case "table", "":
		return WriteTable(w, r)
	case "csv":
		return WriteCSV(w, r.Results)
	case "json":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteTable prints the schedule followed by its statistics.
func WriteTable(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TASK\tSTART\tCOMPLETION\tWAIT\tDEADLINE")
	for _, res := range r.Results {
		status := "met"
		if !res.DeadlineMet {
			status = "MISSED"
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%s\n",
			res.TaskID, res.StartTime, res.CompletionTime, res.WaitTime, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	st := r.Statistics
	_, err := fmt.Fprintf(w, `
Total tasks:          %d
Completed:            %d
Deadline met:         %d
Deadline missed:      %d
Total execution time: %.2f
Average wait time:    %.2f
Throughput:           %.2f tasks/time unit
`, st.TotalTasks, st.CompletedTasks, st.DeadlineMet, st.DeadlineMissed,
		st.TotalExecutionTime, st.AverageWaitTime, st.Throughput)
	return err
}

// WriteCSV writes one row per result with a header row.
func WriteCSV(w io.Writer, results []sched.Result) error {
	cw := csv.NewWriter(w)

	// write header
	cw.Write([]string{"task_id", "start_time", "completion_time", "wait_time", "deadline_met"})
	for _, r := range results {
		cw.Write([]string{
			r.TaskID,
			formatFloat(r.StartTime),
			formatFloat(r.CompletionTime),
			formatFloat(r.WaitTime),
			strconv.FormatBool(r.DeadlineMet),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 4, 64)
}
