package workload

import (
	"fmt"
	"math"
	"math/rand"

	"prioq/internal/config"
)

// Generate builds a random workload. The same config (seed included)
// always yields the same document. Every task arrives at 0.
func Generate(g config.GeneratorConfig) File {
	rng := rand.New(rand.NewSource(g.Seed))
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	file := File{Tasks: make([]TaskSpec, 0, max(g.Count, 0))}
	for i := 0; i < g.Count; i++ {
		exec := uniform(g.MinExecution, g.MaxExecution)
		deadline := uniform(g.MinDeadline, g.MaxDeadline)
		file.Tasks = append(file.Tasks, TaskSpec{
			ID:            fmt.Sprintf("T%d", i+1),
			Priority:      priorityIn(rng, g.MinPriority, g.MaxPriority),
			Deadline:      &deadline,
			ExecutionTime: &exec,
		})
	}
	return file
}

// priorityIn draws uniformly from [lo, hi] for any pair of ints, including
// ranges wider than math.MaxInt.
func priorityIn(rng *rand.Rand, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	span := uint64(hi) - uint64(lo) // wraps correctly for any lo <= hi
	if span == math.MaxUint64 {
		return int(rng.Uint64())
	}
	return int(uint64(lo) + rng.Uint64()%(span+1))
}
