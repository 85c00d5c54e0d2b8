// Package events provides typed, synchronous publish/subscribe channels.
//
// Dispatch is single-threaded: Publish invokes subscribers in registration
// order before returning. Subscribers may publish on other channels or
// unsubscribe while being called.
package events

// Channel carries one payload type.
type Channel[T any] struct {
	subs   []subscription[T]
	nextID int
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (c *Channel[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscription[T]{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev to every subscriber registered at the time of the call.
func (c *Channel[T]) Publish(ev T) {
	if len(c.subs) == 0 {
		return
	}
	snapshot := make([]subscription[T], len(c.subs))
	copy(snapshot, c.subs)
	for _, s := range snapshot {
		s.fn(ev)
	}
}

// Len returns the number of subscribers.
func (c *Channel[T]) Len() int {
	return len(c.subs)
}
