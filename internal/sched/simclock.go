// internal/sched/simclock.go

package sched

// SimClock tracks the executor's cumulative busy time.
// It only moves forward and is owned by a single Schedule call.
type SimClock struct {
	now float64
}

// Now returns the current simulated time.
func (c *SimClock) Now() float64 { return c.now }

// Advance moves the clock forward by d. Negative d is ignored.
func (c *SimClock) Advance(d float64) float64 {
	if d > 0 {
		c.now += d
	}
	return c.now
}
