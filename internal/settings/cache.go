package settings

import (
	"sync"
	"time"
)

// entry holds one cached resource. A clear bumps the generation so a fetch
// that started before the clear cannot repopulate the entry with old data.
type entry[T any] struct {
	mu         sync.Mutex
	value      T
	present    bool
	fetchedAt  time.Time
	generation uint64
}

// fresh returns the cached value when it is younger than ttl.
func (e *entry[T]) fresh(now time.Time, ttl time.Duration) (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.present || now.Sub(e.fetchedAt) >= ttl {
		var zero T
		return zero, false
	}
	return e.value, true
}

// last returns the cached value regardless of age.
func (e *entry[T]) last() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.present
}

func (e *entry[T]) begin() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// store replaces the value wholesale unless the entry was cleared since gen.
func (e *entry[T]) store(value T, at time.Time, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return
	}
	e.value = value
	e.present = true
	e.fetchedAt = at
}

func (e *entry[T]) clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero T
	e.value = zero
	e.present = false
	e.fetchedAt = time.Time{}
	e.generation++
}
