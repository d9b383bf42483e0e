// internal/sched/scheduler.go

// Package sched runs a set of tasks through a priority queue on a single,
// non-preemptive executor and reports when each one started and finished.
package sched

import (
	"math"

	"prioq/internal/pqueue"
)

// Scheduler sequences tasks highest priority first.
// It keeps no state between calls: every Schedule builds its own queue and
// clock, so one Scheduler may serve independent batches concurrently.
type Scheduler struct {
	observer Observer
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver attaches an observer that is told about every enqueue,
// dispatch, completion and missed deadline.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// New creates a new Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule runs tasks to completion and returns one Result per task in
// execution order. Tasks are inserted in input order; among equal
// priorities the order falls out of the heap's sift-down and is not
// guaranteed to be FIFO. The executor never idles: the next task starts the
// moment the previous one completes, whatever its arrival time.
func (s *Scheduler) Schedule(tasks []*Task) []Result {
	q := NewQueue(pqueue.Max)
	var clock SimClock

	for _, t := range tasks {
		q.Insert(t)
		s.emit(EventEnqueue, clock.Now(), t)
	}

	results := make([]Result, 0, len(tasks))
	for !q.IsEmpty() {
		t, err := q.ExtractTop()
		if err != nil {
			// unreachable: the loop checks for emptiness
			break
		}

		start := clock.Now()
		s.emit(EventDispatch, start, t)

		completion := clock.Advance(math.Max(0, t.ExecutionTime))
		r := Result{
			TaskID:         t.ID,
			StartTime:      start,
			CompletionTime: completion,
			WaitTime:       start - t.ArrivalTime,
			DeadlineMet:    t.Deadline == nil || completion <= *t.Deadline,
		}
		results = append(results, r)

		s.emit(EventComplete, completion, t)
		if !r.DeadlineMet {
			s.emit(EventDeadlineMiss, completion, t)
		}
	}

	return results
}

// Simulate schedules tasks with a default Scheduler and summarizes the run.
func Simulate(tasks []*Task) ([]Result, Statistics) {
	results := New().Schedule(tasks)
	return results, Summarize(results)
}

func (s *Scheduler) emit(kind EventKind, clock float64, t *Task) {
	if s.observer == nil {
		return
	}
	s.observer.Observe(Event{
		Kind:     kind,
		Clock:    clock,
		TaskID:   t.ID,
		Priority: t.Priority(),
	})
}
