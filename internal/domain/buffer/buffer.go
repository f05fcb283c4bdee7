// Package buffer provides a bounded, thread-safe FIFO for feature samples.
//
// Unlike a plain bounded queue, Push never fails: at capacity the single
// oldest element is evicted first. Only the head is ever inspected or
// removed, which is all the reconciliation step needs.
package buffer

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the buffer capacity used when no option overrides it.
const DefaultCapacity = 5

// Ring is a fixed-capacity FIFO with overwrite-oldest-on-overflow
// semantics. Safe for one producer pushing concurrently with one consumer
// peeking/popping.
type Ring[T any] struct {
	mu        sync.Mutex
	items     []T
	head      int
	count     int
	capacity  int
	evictions atomic.Uint64
}

// NewRing creates a ring with the configured capacity.
func NewRing[T any](opts ...Option[T]) *Ring[T] {
	r := &Ring[T]{capacity: DefaultCapacity}

	for _, opt := range opts {
		opt(r)
	}

	r.items = make([]T, r.capacity)
	return r
}

// Push appends item at the tail, evicting the oldest element first when at
// capacity. It never blocks and never fails. Returns true when an eviction
// occurred.
func (r *Ring[T]) Push(item T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := false
	if r.count == r.capacity {
		// Drop the head; the slot is reused as the new tail.
		r.head = (r.head + 1) % r.capacity
		r.count--
		r.evictions.Add(1)
		evicted = true
	}

	r.items[(r.head+r.count)%r.capacity] = item
	r.count++
	return evicted
}

// PeekOldest returns the head without removing it. The second return is
// false when the ring is empty.
func (r *Ring[T]) PeekOldest() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.items[r.head], true
}

// PopOldest removes and returns the head. The second return is false when
// the ring is empty.
func (r *Ring[T]) PopOldest() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.count == 0 {
		return zero, false
	}
	item := r.items[r.head]
	r.items[r.head] = zero
	r.head = (r.head + 1) % r.capacity
	r.count--
	return item, true
}

// Clear empties the ring. Used on lifecycle stop.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.count = 0
}

// Len returns the current number of buffered elements.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return r.capacity
}

// Evictions returns the lifetime count of overflow evictions.
func (r *Ring[T]) Evictions() uint64 {
	return r.evictions.Load()
}
