package sched

import "prioq/internal/pqueue"

// Queue is a heap of tasks addressed by Task.ID.
type Queue = pqueue.Heap[string, *Task]

// taskKeys reads priority and identity straight from the task.
var taskKeys = pqueue.Keys[string, *Task]{
	Priority: (*Task).Priority,
	Identity: func(t *Task) string { return t.ID },
	SetPriority: func(t *Task, p int) *Task {
		t.SetPriority(p)
		return t
	},
}

// NewQueue returns an empty task queue with the given ordering.
// Use its UpdateKey to reprioritize a queued task by ID.
func NewQueue(mode pqueue.Mode) *Queue {
	return pqueue.New(taskKeys, pqueue.WithMode(mode))
}
