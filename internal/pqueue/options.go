package pqueue

// Mode selects which end of the priority range sits at the root.
type Mode int

const (
	// Max puts the highest priority at the root.
	Max Mode = iota
	// Min puts the lowest priority at the root.
	Min
)

func (m Mode) String() string {
	switch m {
	case Max:
		return "max"
	case Min:
		return "min"
	default:
		return "unknown"
	}
}

type options struct {
	mode Mode
}

// Option configures a Heap at construction.
type Option func(*options)

// WithMode sets the heap ordering. The default is Max.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}
