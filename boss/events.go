package boss

import "fmt"

type EventKind int

const (
	EventHealthChanged EventKind = iota
	EventPhaseChanged
	EventDeath
)

func (k EventKind) String() string {
	switch k {
	case EventHealthChanged:
		return "health_changed"
	case EventPhaseChanged:
		return "phase_changed"
	case EventDeath:
		return "death"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one boss notification. Health fields are set on every kind.
type Event struct {
	Kind      EventKind
	Health    int
	MaxHealth int
	Phase     int
	PrevPhase int
}

// Listener consumes drained events. Listeners never push back into the boss.
type Listener func(Event)

// Queue buffers events raised during a tick until the owner drains them.
type Queue struct {
	events []Event
}

func (q *Queue) Push(e Event) {
	q.events = append(q.events, e)
}

func (q *Queue) Len() int { return len(q.events) }

// Drain hands every queued event to fn in the order raised and empties the
// queue. Events pushed while draining are delivered in the same call.
func (q *Queue) Drain(fn func(Event)) {
	for i := 0; i < len(q.events); i++ {
		fn(q.events[i])
	}
	q.events = q.events[:0]
}
