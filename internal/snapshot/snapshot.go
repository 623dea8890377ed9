// Package snapshot provides a value holder that broadcasts every published
// value to subscribers.
package snapshot

import (
	"context"
	"sync"
)

// Value holds the latest published T. Subscribers receive the current value
// on subscription and then each later value; a slow subscriber skips
// intermediate values and only ever sees the latest.
type Value[T any] struct {
	mu      sync.RWMutex
	current T
	subs    map[chan T]struct{}
}

// New returns a Value holding initial
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		current: initial,
		subs:    make(map[chan T]struct{}),
	}
}

// Current returns the latest published value
func (v *Value[T]) Current() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Publish replaces the current value and notifies subscribers
func (v *Value[T]) Publish(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = value
	for ch := range v.subs {
		offer(ch, value)
	}
}

// Subscribe returns a channel that yields the current value immediately and
// every later value. The channel is closed when ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, 1)

	v.mu.Lock()
	ch <- v.current
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, ch)
		close(ch)
		v.mu.Unlock()
	}()

	return ch
}

// Subscribers returns the number of active subscriptions
func (v *Value[T]) Subscribers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.subs)
}

// offer delivers value on a one-slot channel, replacing an unread value.
// Callers hold the write lock, so no other sender races on ch.
func offer[T any](ch chan T, value T) {
	select {
	case ch <- value:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- value
}

// Map forwards values from in through f with the same latest-only delivery.
// The returned channel is closed when in is closed or ctx is done.
func Map[T, U any](ctx context.Context, in <-chan T, f func(T) U) <-chan U {
	out := make(chan U, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				offer(out, f(v))
			}
		}
	}()
	return out
}
