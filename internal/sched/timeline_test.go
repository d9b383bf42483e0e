package sched_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"prioq/internal/sched"
)

func TestTimeline(t *testing.T) {
	// b: [0,3)  z: [3,3)  a: [3,8)
	results := sched.New().Schedule([]*sched.Task{
		sched.NewTask("a", 1, 0, sched.WithExecutionTime(5)),
		sched.NewTask("b", 3, 0, sched.WithExecutionTime(3)),
		sched.NewTask("z", 2, 0, sched.WithExecutionTime(0)),
	})
	tl := sched.NewTimeline(results)
	assert.Equal(t, 3, tl.Len())

	tests := map[string]struct {
		at     float64
		wantID string
		wantOK bool
	}{
		"before start":        {at: -1, wantOK: false},
		"first instant":       {at: 0, wantID: "b", wantOK: true},
		"inside first":        {at: 2.9, wantID: "b", wantOK: true},
		"zero length skipped": {at: 3, wantID: "a", wantOK: true},
		"inside last":         {at: 7.5, wantID: "a", wantOK: true},
		"at makespan":         {at: 8, wantOK: false},
		"after makespan":      {at: 100, wantOK: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, ok := tl.At(tt.at)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, r.TaskID)
		})
	}
}

func TestTimeline_Window(t *testing.T) {
	results := sched.New().Schedule([]*sched.Task{
		sched.NewTask("a", 4, 0, sched.WithExecutionTime(2)), // [0,2)
		sched.NewTask("b", 3, 0, sched.WithExecutionTime(2)), // [2,4)
		sched.NewTask("c", 2, 0, sched.WithExecutionTime(2)), // [4,6)
		sched.NewTask("d", 1, 0, sched.WithExecutionTime(2)), // [6,8)
	})
	tl := sched.NewTimeline(results)

	assert.Equal(t, []string{"b", "c"}, ids(tl.Window(3, 6)))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(tl.Window(0, 100)))
	assert.Empty(t, tl.Window(8, 10))
	assert.Empty(t, sched.NewTimeline(nil).Window(0, 1))
}
