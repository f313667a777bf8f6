// Package trace keeps a bounded record of recent environment
// transitions for post-hoc inspection.
package trace

import "sync"

// Recorder is a capacity-bounded stream of transition descriptions.
// Once full, the oldest entry is dropped for each new one.
type Recorder struct {
	entries  []string
	capacity int
	mu       sync.RWMutex
}

// NewRecorder creates a recorder holding up to capacity entries.
func NewRecorder(capacity int) *Recorder {
	return &Recorder{
		entries:  make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Store appends an entry, evicting the oldest one if the recorder is
// full.
func (r *Recorder) Store(entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[1:]
	}
}

// All returns a copy of all recorded entries, oldest first.
func (r *Recorder) All() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]string, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Tail returns a copy of the most recent n entries, oldest first.
func (r *Recorder) Tail(n int) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	start := len(r.entries) - n
	if start < 0 {
		start = 0
	}
	entries := make([]string, len(r.entries)-start)
	copy(entries, r.entries[start:])
	return entries
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
