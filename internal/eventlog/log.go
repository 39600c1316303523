package eventlog

import (
	"sync"
	"time"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 100

// Log is an append-only FIFO of events bounded to a fixed capacity.
// When an append would exceed the capacity, the oldest entry is evicted.
//
// It is safe for concurrent use.
type Log struct {
	mu     sync.RWMutex
	cap    int
	events []Event
}

func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{cap: capacity, events: make([]Event, 0, capacity)}
}

// Append stores e at the end of the history. A zero Time is stamped with now.
func (l *Log) Append(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	l.mu.Lock()
	if len(l.events) == l.cap {
		// shift in place so the backing array never grows past cap
		copy(l.events, l.events[1:])
		l.events[len(l.events)-1] = e
	} else {
		l.events = append(l.events, e)
	}
	l.mu.Unlock()
}

// Query returns a copy of the events matching f, oldest first.
func (l *Log) Query(f Filter) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, 0, len(l.events))
	for _, e := range l.events {
		if f.match(e) {
			out = append(out, e)
		}
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

func (l *Log) Cap() int { return l.cap }
