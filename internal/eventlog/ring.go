// Package eventlog provides a bounded, append-only log of diagnostic
// entries. The log is the sole user-facing error channel of the agent:
// every component action that matters to an operator lands here, and the
// dashboard renders it verbatim.
package eventlog

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries retained before eviction.
const DefaultCapacity = 100

// Severity classifies a log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Entry is a single immutable log record.
type Entry struct {
	// Timestamp is the wall-clock time of day the entry was appended.
	Timestamp string `json:"timestamp"`
	// Message is the human-readable diagnostic.
	Message string `json:"message"`
	// Severity classifies the entry.
	Severity Severity `json:"severity"`
}

// Ring is a bounded append-only log. When full, appending evicts the
// oldest entry. All methods are safe for concurrent use.
type Ring struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int

	// now is the clock, replaceable in tests.
	now func() time.Time
}

// NewRing creates a ring with the given capacity. A non-positive
// capacity falls back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ring{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Append records a message at the given severity and returns the stored
// entry.
func (r *Ring) Append(severity Severity, message string) Entry {
	entry := Entry{
		Timestamp: r.now().Format("15:04:05"),
		Message:   message,
		Severity:  severity,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.capacity {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:len(r.entries)-1]
	}
	r.entries = append(r.entries, entry)

	return entry
}

// Entries returns a copy of the log, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the current number of entries.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes all entries.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = r.entries[:0]
}
