package bus

import "time"

// Event is a domain event published on the bus.
//
// Kinds are dot-delimited and namespaced by emitter:
//
//	state.*   — a store slice was replaced or mutated
//	sync.*    — a poll cycle finished (success or error)
//	session.* — daemon runtime status changes
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// NewEvent builds an event stamped with the current time.
func NewEvent(kind string, payload any) Event {
	return Event{Kind: kind, Timestamp: time.Now(), Payload: payload}
}
