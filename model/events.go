package model

import (
	"sync"

	"github.com/orbitalcombat/simcore/entity"
)

// EventKind tags an outbound story event.
type EventKind int

const (
	EventPaused EventKind = iota
	EventWarpStarted
	EventBurnCreated
	EventTurnCreated
	EventFireTorpedo
	EventEnableGuidance
	EventIntercept
)

// Event is advisory-only: consumed by the story layer, never read back
// by the simulation itself.
type Event struct {
	Kind     EventKind
	Entity   entity.Entity // the vessel the event concerns, if any
	Victim   entity.Entity // EventIntercept only
}

// eventQueue is wrapped in a mutex only because read-only callbacks
// (rendering) may enqueue events during a tick; contention is negligible
// and never blocks prediction.
type eventQueue struct {
	mu     sync.Mutex
	events []Event
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, e)
}

// drain returns and clears every queued event.
func (q *eventQueue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.events
	q.events = nil
	return out
}

func (m *Model) emit(e Event) {
	m.events.push(e)
}
