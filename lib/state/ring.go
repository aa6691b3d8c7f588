// Copyright 2026 The FrontMCP Authors
// SPDX-License-Identifier: Apache-2.0

package state

// Ring is a fixed-capacity buffer of the most recent values pushed
// into it. When full, a push evicts the oldest value. It is not safe
// for concurrent use; the store is single-consumer.
type Ring[T any] struct {
	items []T
	start int
	count int
}

// NewRing creates a ring holding at most capacity values. Capacity
// must be positive.
func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{items: make([]T, capacity)}
}

// Push appends a value, evicting the oldest when the ring is full.
func (ring *Ring[T]) Push(value T) {
	if ring.count < len(ring.items) {
		ring.items[(ring.start+ring.count)%len(ring.items)] = value
		ring.count++
		return
	}
	ring.items[ring.start] = value
	ring.start = (ring.start + 1) % len(ring.items)
}

// Len reports how many values the ring currently holds.
func (ring *Ring[T]) Len() int {
	return ring.count
}

// Cap reports the ring's fixed capacity.
func (ring *Ring[T]) Cap() int {
	return len(ring.items)
}

// Items returns the held values oldest first. The returned slice is
// freshly allocated.
func (ring *Ring[T]) Items() []T {
	result := make([]T, ring.count)
	for i := 0; i < ring.count; i++ {
		result[i] = ring.items[(ring.start+i)%len(ring.items)]
	}
	return result
}

// Last returns up to n of the most recent values, oldest first.
func (ring *Ring[T]) Last(n int) []T {
	if n > ring.count {
		n = ring.count
	}
	result := make([]T, n)
	for i := 0; i < n; i++ {
		result[i] = ring.items[(ring.start+ring.count-n+i)%len(ring.items)]
	}
	return result
}
