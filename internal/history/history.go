// Package history keeps the most recent dispatch outcomes in memory.
package history

import (
	"sync"

	"github.com/studiowebux/apiconsole/internal/types"
)

// DefaultCapacity is the number of outcomes retained
const DefaultCapacity = 10

// History is a bounded FIFO of test outcomes.
// The oldest entry is evicted when an append would exceed capacity.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  []types.TestOutcome
}

// New creates a history with the given capacity (DefaultCapacity if < 1)
func New(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{
		capacity: capacity,
		entries:  make([]types.TestOutcome, 0, capacity),
	}
}

// Append records an outcome, evicting the oldest when full
func (h *History) Append(outcome types.TestOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:h.capacity-1]
	}
	h.entries = append(h.entries, outcome)
}

// Entries returns a copy, oldest first
func (h *History) Entries() []types.TestOutcome {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]types.TestOutcome, len(h.entries))
	copy(out, h.entries)
	return out
}

// Latest returns the newest outcome
func (h *History) Latest() (types.TestOutcome, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.entries) == 0 {
		return types.TestOutcome{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

func (h *History) Capacity() int {
	return h.capacity
}
