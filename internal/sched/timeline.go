// internal/sched/timeline.go

package sched

import (
	"math"

	"github.com/emirpasic/gods/trees/redblacktree"
)

// Timeline indexes the results of a run by start time so the executor's
// state at any simulated instant can be looked up in O(log n).
type Timeline struct {
	tree *redblacktree.Tree // red-black tree ordered by start time and position
}

// NewTimeline builds a timeline from results in execution order.
func NewTimeline(results []Result) *Timeline {
	tl := &Timeline{tree: redblacktree.NewWith(cmp)}
	for i, r := range results {
		tl.tree.Put(nodeKey{start: r.StartTime, seq: i}, r)
	}
	return tl
}

// Len returns the number of results in the timeline.
func (tl *Timeline) Len() int { return tl.tree.Size() }

// At returns the result that was executing at time t, using half-open
// [start, completion) intervals. ok is false if the executor was not busy.
func (tl *Timeline) At(t float64) (r Result, ok bool) {
	node, found := tl.tree.Floor(nodeKey{start: t, seq: math.MaxInt})
	if !found {
		return r, false
	}
	r = node.Value.(Result)
	if t >= r.CompletionTime {
		return Result{}, false
	}
	return r, true
}

// Window returns, in execution order, the results that were running at
// from or started within [from, to).
func (tl *Timeline) Window(from, to float64) []Result {
	var out []Result
	it := tl.tree.Iterator()
	for it.Next() {
		r := it.Value().(Result)
		if r.StartTime >= to {
			break
		}
		if r.StartTime >= from || r.CompletionTime > from {
			out = append(out, r)
		}
	}
	return out
}

// nodeKey is used as a key in the red-black tree. seq keeps zero-length
// tasks that share a start time apart.
type nodeKey struct {
	start float64
	seq   int
}

// cmp implements the Comparator for red-black tree ordering.
func cmp(a, b any) int {
	ka, kb := a.(nodeKey), b.(nodeKey)
	switch {
	case ka.start < kb.start:
		return -1
	case ka.start > kb.start:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}
