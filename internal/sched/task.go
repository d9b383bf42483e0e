package sched

import "math"

// DefaultExecutionTime is used when a task does not say how long it runs.
const DefaultExecutionTime = 1.0

// Task represents one unit of work for the single executor.
// All fields except the priority are fixed once the task is built.
type Task struct {
	ID            string   // caller assigned, unique within one Schedule call
	ArrivalTime   float64  // when the task entered the system
	Deadline      *float64 // nil when the task has no deadline
	ExecutionTime float64  // time the executor spends on it, >= 0
	Description   string

	priority int // higher is more urgent; change it only through Queue.UpdateKey
}

// TaskOption configures optional task attributes.
type TaskOption func(*Task)

// WithDeadline sets an absolute deadline.
func WithDeadline(d float64) TaskOption {
	return func(t *Task) { t.Deadline = &d }
}

// WithExecutionTime sets how long the task runs. Negative values become 0.
func WithExecutionTime(e float64) TaskOption {
	return func(t *Task) { t.ExecutionTime = math.Max(0, e) }
}

// WithDescription attaches a free-form description.
func WithDescription(s string) TaskOption {
	return func(t *Task) { t.Description = s }
}

// NewTask creates a task with the default execution time and no deadline.
func NewTask(id string, priority int, arrival float64, opts ...TaskOption) *Task {
	t := &Task{
		ID:            id,
		ArrivalTime:   arrival,
		ExecutionTime: DefaultExecutionTime,
		priority:      priority,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Priority returns the current priority.
func (t *Task) Priority() int { return t.priority }

// SetPriority overwrites the priority.
//
// NOTE: while the task sits in a queue this must only be reached through the
// queue's UpdateKey. Calling it directly leaves the heap out of order and
// nothing will detect it; keeping the two consistent is the caller's job.
func (t *Task) SetPriority(p int) { t.priority = p }

// IsOverdue reports whether the task has a deadline and now is past it.
func (t *Task) IsOverdue(now float64) bool {
	return t.Deadline != nil && now > *t.Deadline
}

// TimeToDeadline returns the time left until the deadline, floored at 0.
// ok is false when the task has no deadline.
func (t *Task) TimeToDeadline(now float64) (remaining float64, ok bool) {
	if t.Deadline == nil {
		return 0, false
	}
	return math.Max(0, *t.Deadline-now), true
}
