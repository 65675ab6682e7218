// Package dedupe tracks which keys have already been seen.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen keys so that each one is accepted at most once.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key so that it can be accepted again.
	Unrecord(ctx context.Context, key string)

	// Size returns the number of recorded keys.
	Size() int64
}

// inMemoryDeduper is a mutex-guarded set. It never evicts: dropping a key
// would let a duplicate medal row through.
type inMemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacityHint < 0 {
		o.capacityHint = 0
	}
	return &inMemoryDeduper{seen: make(map[string]struct{}, o.capacityHint)}
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}

// Filter returns the items whose key has not been seen before, preserving
// input order. The first item carrying a key wins.
func Filter[T any](ctx context.Context, d Deduper, items []T, key func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if d.SeenAndRecord(ctx, key(it)) {
			continue
		}
		out = append(out, it)
	}
	return out
}
