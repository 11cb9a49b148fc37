package session

import "sync"

// Snapshot is a single-slot holder for the latest known session list. The
// store's change subscription is the only writer; the display tick, the
// expiry monitor and the HTTP handlers all read whatever is current at the
// moment of use, so long-lived loops never act on a stale capture.
type Snapshot struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Replace swaps in a fully-formed entry list. Callers must not mutate the
// slice after handing it over.
func (s *Snapshot) Replace(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = entries
}

// Entries returns the current list. The returned slice is shared and must be
// treated as read-only.
func (s *Snapshot) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries
}

// Len returns the number of sessions in the current snapshot.
func (s *Snapshot) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
