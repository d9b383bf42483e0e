package sched

// Result is the outcome of running one task.
type Result struct {
	TaskID         string  `json:"task_id" yaml:"task_id"`
	StartTime      float64 `json:"start_time" yaml:"start_time"`
	CompletionTime float64 `json:"completion_time" yaml:"completion_time"`
	WaitTime       float64 `json:"wait_time" yaml:"wait_time"` // start - arrival
	DeadlineMet    bool    `json:"deadline_met" yaml:"deadline_met"`
}

// Statistics aggregates a run. Every task that is scheduled completes, so
// CompletedTasks always equals TotalTasks.
type Statistics struct {
	TotalTasks         int     `json:"total_tasks" yaml:"total_tasks"`
	CompletedTasks     int     `json:"completed_tasks" yaml:"completed_tasks"`
	DeadlineMet        int     `json:"deadline_met" yaml:"deadline_met"`
	DeadlineMissed     int     `json:"deadline_missed" yaml:"deadline_missed"`
	TotalExecutionTime float64 `json:"total_execution_time" yaml:"total_execution_time"`
	AverageWaitTime    float64 `json:"average_wait_time" yaml:"average_wait_time"`
	Throughput         float64 `json:"throughput" yaml:"throughput"` // tasks per time unit
}

// Summarize reduces results to Statistics. An empty slice gives all zeros;
// rates with a zero denominator are 0 rather than NaN.
func Summarize(results []Result) Statistics {
	if len(results) == 0 {
		return Statistics{}
	}

	st := Statistics{
		TotalTasks:     len(results),
		CompletedTasks: len(results),
		// the clock only moves forward, so the last completion is the makespan
		TotalExecutionTime: results[len(results)-1].CompletionTime,
	}

	var waitSum float64
	for _, r := range results {
		if r.DeadlineMet {
			st.DeadlineMet++
		}
		waitSum += r.WaitTime
	}
	st.DeadlineMissed = st.TotalTasks - st.DeadlineMet
	st.AverageWaitTime = waitSum / float64(st.TotalTasks)

	if st.TotalExecutionTime > 0 {
		st.Throughput = float64(st.CompletedTasks) / st.TotalExecutionTime
	}
	return st
}
