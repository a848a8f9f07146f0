// ABOUTME: Change notifications raised by the dealer directory store
// ABOUTME: Listeners subscribe and receive an Event after every mutation or reload
package store

import (
	"github.com/harperreed/dealerdesk/models"
)

// EventKind identifies what changed in the store.
type EventKind int

const (
	EventReloaded EventKind = iota
	EventDealerAdded
	EventDealerUpdated
	EventDealerDeleted
	EventActivityAdded
)

func (k EventKind) String() string {
	switch k {
	case EventReloaded:
		return "reloaded"
	case EventDealerAdded:
		return "dealer added"
	case EventDealerUpdated:
		return "dealer updated"
	case EventDealerDeleted:
		return "dealer deleted"
	case EventActivityAdded:
		return "activity added"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers after a mutation has been applied.
type Event struct {
	Kind   EventKind
	ID     models.ID
	Status SaveStatus
}

// Listener receives store events. It runs on the goroutine that made the
// change, after the store's lock has been released.
type Listener func(Event)

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.listenersMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
