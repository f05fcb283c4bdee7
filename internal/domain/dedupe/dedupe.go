// Package dedupe provides bounded idempotency tracking for ingest requests.
package dedupe

import (
	"context"
	"sync"
)

// Deduper records seen sample IDs so retried pushes are acknowledged
// without re-entering the pipeline.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes id from the seen set, allowing a retry after a
	// failed push.
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked IDs.
	Size() int
}

const defaultMaxSize = 10000

// inMemoryDeduper tracks IDs in a map with a FIFO eviction ring. When the
// set is full, the oldest recorded ID is forgotten first, matching the
// pipeline's overwrite-oldest buffer semantics.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	order   []string
	head    int
	count   int
	maxSize int
}

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize sets the maximum number of IDs kept. Non-positive values are
// ignored.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		if maxSize > 0 {
			d.maxSize = maxSize
		}
	}
}

// NewInMemoryDeduper creates a bounded in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{}, d.maxSize)
	d.order = make([]string, d.maxSize)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.count == d.maxSize {
		oldest := d.order[d.head]
		delete(d.seen, oldest)
		d.head = (d.head + 1) % d.maxSize
		d.count--
	}

	d.order[(d.head+d.count)%d.maxSize] = id
	d.count++
	d.seen[id] = struct{}{}
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// The ring slot keeps the id until it rotates out. If the same id is
	// recorded again before then, evicting the stale slot forgets it
	// early; the cache is best-effort, so that only weakens dedupe, it
	// never blocks a push.
	delete(d.seen, id)
}

func (d *inMemoryDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
