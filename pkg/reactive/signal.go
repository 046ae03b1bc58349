// Package reactive provides observable state cells. Subscribers are called
// after every Set or Update; inside a batch, notifications are coalesced so
// each changed cell notifies once with its final value.
package reactive

import (
	"sync"
)

// Scope groups cells whose notifications may be batched together.
// A nil *Scope disables batching.
type Scope struct {
	mu      sync.Mutex
	depth   int
	pending []func()
	queued  map[any]struct{}
}

// NewScope creates an empty batching scope.
func NewScope() *Scope {
	return &Scope{queued: make(map[any]struct{})}
}

// RunBatch runs fn and delivers the notifications it triggered once fn
// returns. Nested batches flush with the outermost one.
func (s *Scope) RunBatch(fn func()) {
	if s == nil {
		fn()
		return
	}
	s.mu.Lock()
	s.depth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.depth--
		var flush []func()
		if s.depth == 0 {
			flush = s.pending
			s.pending = nil
			s.queued = make(map[any]struct{})
		}
		s.mu.Unlock()

		for _, f := range flush {
			f()
		}
	}()

	fn()
}

// enqueue queues fire under key if a batch is open and reports whether it did.
func (s *Scope) enqueue(key any, fire func()) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.depth == 0 {
		return false
	}
	if _, ok := s.queued[key]; !ok {
		s.queued[key] = struct{}{}
		s.pending = append(s.pending, fire)
	}
	return true
}

// State is an observable value.
type State[T any] struct {
	value T
	mu    sync.RWMutex

	subs   map[int]func(T)
	nextID int
	subsMu sync.Mutex
	scope  *Scope
}

// NewState creates a state cell. scope may be nil.
func NewState[T any](initial T, scope *Scope) *State[T] {
	return &State[T]{
		value: initial,
		subs:  make(map[int]func(T)),
		scope: scope,
	}
}

// Get returns the current value.
func (s *State[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies subscribers.
func (s *State[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()

	s.changed()
}

// Update atomically reads, modifies, and writes the value.
func (s *State[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = fn(s.value)
	s.mu.Unlock()

	s.changed()
}

// Subscribe registers fn and returns a function that removes it.
func (s *State[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// Subscribers returns the number of registered callbacks.
func (s *State[T]) Subscribers() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

func (s *State[T]) changed() {
	if s.scope.enqueue(s, s.notify) {
		return
	}
	s.notify()
}

// notify calls subscribers in registration order outside the locks, so a
// subscriber may read or even Set the cell again.
func (s *State[T]) notify() {
	s.subsMu.Lock()
	fns := make([]func(T), 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.subsMu.Unlock()

	value := s.Get()
	for _, fn := range fns {
		fn(value)
	}
}
