package memory

import (
	"context"
	"sync"
)

// DefaultDedupCapacity bounds how many delivery keys are remembered.
const DefaultDedupCapacity = 10000

// Deduplicator remembers the most recent delivery keys, evicting the oldest first.
type Deduplicator struct {
	mu       sync.Mutex
	seen     map[string]struct{}
	order    []string
	capacity int
}

// NewDeduplicator creates a deduplicator holding up to capacity keys.
func NewDeduplicator(capacity int) *Deduplicator {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	return &Deduplicator{
		seen:     make(map[string]struct{}, capacity),
		capacity: capacity,
	}
}

// MarkProcessed reports true the first time a key is seen.
func (d *Deduplicator) MarkProcessed(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return false, nil
	}

	if len(d.order) >= d.capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	return true, nil
}
