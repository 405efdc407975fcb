// Package generic holds small type-safe wrappers over standard containers.
package generic

import "sync"

// Pool is a typed sync.Pool. Values are passed through the optional reset
// function on Put so callers always Get a clean value.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T) T
}

func NewPool[T any](generate func() T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return generate()
			},
		},
	}
}

// NewSlicePool pools slices with at least capacity elements of room. Returned
// slices are truncated to zero length.
func NewSlicePool[E any](capacity int) *Pool[[]E] {
	p := NewPool(func() []E { return make([]E, 0, capacity) })
	p.reset = func(s []E) []E {
		clear(s)
		return s[:0]
	}
	return p
}

func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

func (p *Pool[T]) Put(value T) {
	if p.reset != nil {
		value = p.reset(value)
	}
	p.pool.Put(value)
}
