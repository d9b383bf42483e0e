// internal/sched/event.go

package sched

// EventKind represents the type of scheduler event
type EventKind int

const (
	EventEnqueue EventKind = iota
	EventDispatch
	EventComplete
	EventDeadlineMiss
)

// Event is emitted on key actions during Schedule.
// Clock is the simulated time at which it happened.
type Event struct {
	Kind     EventKind
	Clock    float64
	TaskID   string
	Priority int
}

func (k EventKind) String() string {
	switch k {
	case EventEnqueue:
		return "Enqueued"
	case EventDispatch:
		return "Dispatch"
	case EventComplete:
		return "Complete"
	case EventDeadlineMiss:
		return "DeadlineMiss"
	default:
		return "Unknown"
	}
}

// Observer receives scheduler events synchronously, on the goroutine that
// called Schedule. It must not touch the tasks being scheduled.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Observers fans a single event out to several observers in order.
type Observers []Observer

func (obs Observers) Observe(ev Event) {
	for _, o := range obs {
		o.Observe(ev)
	}
}
