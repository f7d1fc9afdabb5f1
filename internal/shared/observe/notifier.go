// Package observe provides the listener registry controllers use to push
// state snapshots to rendering layers.
package observe

import "sync"

// Notifier fans a value out to subscribed listeners. Listeners run in
// subscription order with no Notifier lock held, so a listener may call
// back into its controller or unsubscribe itself.
//
// Delivery is serialized. A Publish made while another is delivering, from
// a listener or from another goroutine, is queued and delivered by the
// running call before it returns.
type Notifier[T any] struct {
	// Version, when set, orders values. A value whose version is at or
	// below the last delivered one is dropped.
	Version func(T) uint64

	mu        sync.Mutex
	next      uint64
	listeners map[uint64]func(T)
	order     []uint64

	pending   []T
	draining  bool
	delivered bool
	last      uint64
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is idempotent.
func (n *Notifier[T]) Subscribe(fn func(T)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.listeners == nil {
		n.listeners = make(map[uint64]func(T))
	}
	n.next++
	key := n.next
	n.listeners[key] = fn
	n.order = append(n.order, key)

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(key) })
	}
}

// Publish delivers v to every current listener.
func (n *Notifier[T]) Publish(v T) {
	n.mu.Lock()
	n.pending = append(n.pending, v)
	if n.draining {
		n.mu.Unlock()
		return
	}
	n.draining = true
	n.mu.Unlock()

	finished := false
	defer func() {
		// Reset the drain if a listener panicked
		if !finished {
			n.mu.Lock()
			n.draining = false
			n.pending = nil
			n.mu.Unlock()
		}
	}()
	for {
		fns, next, ok := n.dequeue()
		if !ok {
			break
		}
		for _, fn := range fns {
			fn(next)
		}
	}
	finished = true
}

// Len returns the number of listeners.
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}

// Clear removes every listener.
func (n *Notifier[T]) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = nil
	n.order = nil
	n.pending = nil
}

// dequeue pops the next deliverable value with the listeners to receive
// it. It ends the drain when the queue is empty.
func (n *Notifier[T]) dequeue() ([]func(T), T, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for len(n.pending) > 0 {
		v := n.pending[0]
		n.pending = n.pending[1:]
		if n.Version != nil {
			ver := n.Version(v)
			if n.delivered && ver <= n.last {
				continue
			}
			n.last, n.delivered = ver, true
		}
		return n.listenersLocked(), v, true
	}
	n.pending = nil
	n.draining = false
	var zero T
	return nil, zero, false
}

func (n *Notifier[T]) listenersLocked() []func(T) {
	out := make([]func(T), 0, len(n.order))
	for _, key := range n.order {
		out = append(out, n.listeners[key])
	}
	return out
}

func (n *Notifier[T]) remove(key uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.listeners[key]; !ok {
		return
	}
	delete(n.listeners, key)
	for i, k := range n.order {
		if k == key {
			n.order = append(n.order[:i:i], n.order[i+1:]...)
			break
		}
	}
}
