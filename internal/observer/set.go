package observer

import "sync"

// Set holds registered observers by identity. Adding the same observer twice
// is a no-op.
//
// It is safe for concurrent use.
type Set struct {
	mu      sync.RWMutex
	members []*Observer
}

func NewSet() *Set { return &Set{} }

func (s *Set) indexLocked(o *Observer) int {
	for i, m := range s.members {
		if m == o {
			return i
		}
	}
	return -1
}

// Add inserts o and reports whether it was not already present.
func (s *Set) Add(o *Observer) bool {
	if o == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(o) >= 0 {
		return false
	}
	s.members = append(s.members, o)
	return true
}

// Remove deletes o and reports whether it was present.
func (s *Set) Remove(o *Observer) bool {
	if o == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(o)
	if i < 0 {
		return false
	}
	s.members = append(s.members[:i], s.members[i+1:]...)
	return true
}

func (s *Set) Contains(o *Observer) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(o) >= 0
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Snapshot returns the current members. Callers must not rely on its order.
func (s *Set) Snapshot() []*Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Observer(nil), s.members...)
}
