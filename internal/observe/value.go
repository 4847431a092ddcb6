// Package observe provides a single-writer observable state cell. It replaces
// hot multicast streams with an explicit latest-value container: subscribers
// receive the current value on subscribe and conflated updates afterwards, so
// a slow reader always observes the newest value and never blocks the writer.
package observe

import (
	"sync"
)

// Value holds the latest value of type T and fans it out to subscribers.
type Value[T any] struct {
	mu     sync.Mutex
	value  T
	set    bool
	closed bool
	subs   map[*Subscription[T]]struct{}
}

// Subscription is one observer of a Value. Read updates from C; the channel
// is closed when the subscription is cancelled or the Value is closed.
type Subscription[T any] struct {
	C      <-chan T
	ch     chan T
	parent *Value[T]
}

// NewValue creates an empty cell. Subscribers see nothing until the first Set.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[*Subscription[T]]struct{})}
}

// NewValueOf creates a cell pre-populated with an initial value.
func NewValueOf[T any](initial T) *Value[T] {
	v := NewValue[T]()
	v.Set(initial)
	return v
}

// Set replaces the current value and notifies all subscribers. Delivery is
// conflated: if a subscriber has not consumed the previous update it is
// replaced by the new one.
func (v *Value[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.value = value
	v.set = true
	for sub := range v.subs {
		sub.offer(value)
	}
}

// Get returns the current value and whether one has been set.
func (v *Value[T]) Get() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value, v.set
}

// Subscribe registers a new observer. If a value is already present it is
// delivered immediately.
func (v *Value[T]) Subscribe() *Subscription[T] {
	ch := make(chan T, 1)
	sub := &Subscription[T]{C: ch, ch: ch, parent: v}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		close(ch)
		return sub
	}
	v.subs[sub] = struct{}{}
	if v.set {
		sub.offer(v.value)
	}
	return sub
}

// Close terminates all subscriptions. Further Set calls are ignored.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for sub := range v.subs {
		close(sub.ch)
	}
	v.subs = nil
}

// Cancel removes the subscription and closes its channel.
func (s *Subscription[T]) Cancel() {
	v := s.parent
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	if _, ok := v.subs[s]; ok {
		delete(v.subs, s)
		close(s.ch)
	}
}

// offer performs the conflating send. Caller holds v.mu, which serializes
// writers, so the drain-then-send pair cannot race another offer.
func (s *Subscription[T]) offer(value T) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- value
}
