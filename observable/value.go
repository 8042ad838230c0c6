// Package observable provides value cells with a single writer and any number
// of readers. Every Store bumps the version and wakes everyone waiting on
// Changed.
package observable

import (
	"context"
	"sync"
)

// Value holds the latest T. The zero value is not usable; call NewValue.
type Value[T any] struct {
	mu      sync.RWMutex
	v       T
	version uint64
	changed chan struct{}
}

// NewValue returns a Value holding initial at version 0
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		v:       initial,
		changed: make(chan struct{}),
	}
}

// Load returns the current value
func (o *Value[T]) Load() T {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v
}

// Snapshot returns the current value with its version
func (o *Value[T]) Snapshot() (T, uint64) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v, o.version
}

// Version returns how many times the value has been stored
func (o *Value[T]) Version() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.version
}

// Store replaces the value and wakes every waiter
func (o *Value[T]) Store(v T) {
	o.mu.Lock()
	o.v = v
	o.version++
	close(o.changed)
	o.changed = make(chan struct{})
	o.mu.Unlock()
}

// Changed returns a channel closed by the next Store
func (o *Value[T]) Changed() <-chan struct{} {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.changed
}

// Watch returns the value, its version and the channel closed by the next
// Store, read together so no Store can slip in between
func (o *Value[T]) Watch() (T, uint64, <-chan struct{}) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.v, o.version, o.changed
}

// Subscribe streams values until ctx is done. The current value is sent
// first. A slow reader skips intermediate values and always receives the
// latest one. The channel is closed when ctx is done.
func (o *Value[T]) Subscribe(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		var last uint64
		first := true
		for {
			v, version, changed := o.Watch()
			if first || version != last {
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
				first = false
				last = version
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// WaitFor blocks until pred holds for the current value or ctx is done
func WaitFor[T any](ctx context.Context, o *Value[T], pred func(T) bool) (T, error) {
	for {
		v, _, changed := o.Watch()
		if pred(v) {
			return v, nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return v, ctx.Err()
		}
	}
}
