// Package eventlog keeps a bounded, chronological history of registry events.
package eventlog

import "time"

// Kind classifies an Event.
type Kind string

const (
	KindAdd             Kind = "add"
	KindRemove          Kind = "remove"
	KindDial            Kind = "dial"
	KindObserverAdded   Kind = "observerAdded"
	KindObserverRemoved Kind = "observerRemoved"
)

// Kinds lists every known Kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindAdd, KindRemove, KindDial, KindObserverAdded, KindObserverRemoved}
}

// ParseKind resolves a kind name. The match is exact.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Event is an immutable record of a successful registry operation.
//
// Number holds the normalized phone number for add/remove/dial events and
// the observer id for observer lifecycle events.
type Event struct {
	Kind   Kind      `json:"type"`
	Number string    `json:"phoneNumber"`
	Time   time.Time `json:"timestamp"`
}

// Filter narrows a Query. Zero-valued fields impose no constraint; set fields
// are combined with AND. Start and End are inclusive.
type Filter struct {
	Kind  Kind
	Start time.Time
	End   time.Time
}

func (f Filter) match(e Event) bool {
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if !f.Start.IsZero() && e.Time.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.Time.After(f.End) {
		return false
	}
	return true
}
