package querycache

import (
	"context"
	"sync"
)

// Status is the lifecycle of an observed query.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is what a view renders for its current key.
// IsPlaceholder is true when Data belongs to the previously observed key.
type State[T any] struct {
	Key           Key
	Status        Status
	Data          T
	HasData       bool
	IsPlaceholder bool
	Err           error
}

// Observer tracks one view's current key and keeps the previous key's
// data visible while a new key loads.
type Observer[T any] struct {
	cache    *Cache
	onChange func(State[T])

	mu    sync.Mutex
	state State[T]
	gen   uint64
}

// NewObserver creates an Observer. onChange, if set, is called outside
// any lock after every state change.
func NewObserver[T any](cache *Cache, onChange func(State[T])) *Observer[T] {
	return &Observer[T]{
		cache:    cache,
		onChange: onChange,
		state:    State[T]{Status: StatusIdle},
	}
}

// State returns the current state.
func (o *Observer[T]) State() State[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Fetch observes key, fetching through the cache when the stored value is
// missing or stale. A result that arrives after a newer Fetch started is
// discarded.
func (o *Observer[T]) Fetch(ctx context.Context, key Key, fetch func(ctx context.Context) (T, error)) State[T] {
	cached, found, stale := PeekAs[T](o.cache, key)

	o.mu.Lock()
	o.gen++
	gen := o.gen
	prev := o.state

	next := State[T]{Key: key, Status: StatusPending}
	switch {
	case found && !stale:
		next = State[T]{Key: key, Status: StatusSuccess, Data: cached, HasData: true}
	case found:
		next.Data, next.HasData = cached, true
	case prev.HasData:
		next.Data, next.HasData, next.IsPlaceholder = prev.Data, true, true
	}
	o.state = next
	o.mu.Unlock()
	o.notify(next)

	if next.Status == StatusSuccess {
		return next
	}

	value, err := Fetch(ctx, o.cache, key, fetch)

	o.mu.Lock()
	if gen != o.gen {
		current := o.state
		o.mu.Unlock()
		return current
	}
	if err != nil {
		next.Status = StatusError
		next.Err = err
	} else {
		next = State[T]{Key: key, Status: StatusSuccess, Data: value, HasData: true}
	}
	o.state = next
	o.mu.Unlock()
	o.notify(next)

	return next
}

func (o *Observer[T]) notify(s State[T]) {
	if o.onChange != nil {
		o.onChange(s)
	}
}
