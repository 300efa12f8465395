// Package broadcast publishes the latest value of some state to any number of
// observers without ever blocking the publisher.
package broadcast

import "sync"

// Value holds the latest value of T. Every subscriber owns a single-slot
// channel: when it has not consumed the previous value yet, that value is
// replaced by the new one.
type Value[T any] struct {
	mu   sync.Mutex
	cur  T
	subs map[chan T]struct{}
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[chan T]struct{}),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set stores val and offers it to every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cur = val
	for ch := range v.subs {
		offer(ch, val)
	}
}

// Subscribe returns a channel that immediately holds the current value and
// then receives every later value, latest wins. The returned function ends
// the subscription and closes the channel.
func (v *Value[T]) Subscribe() (<-chan T, func()) {
	ch := make(chan T, 1)

	v.mu.Lock()
	ch <- v.cur
	v.subs[ch] = struct{}{}
	v.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, ch)
			close(ch)
			v.mu.Unlock()
		})
	}
}

func offer[T any](ch chan T, val T) {
	select {
	case ch <- val:
		return
	default:
	}
	// drop the stale value
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- val:
	default:
	}
}
