package observe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInSubscriptionOrder(t *testing.T) {
	var n Notifier[int]
	var got []string

	n.Subscribe(func(v int) { got = append(got, "a") })
	n.Subscribe(func(v int) { got = append(got, "b") })
	n.Publish(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribe(t *testing.T) {
	var n Notifier[string]
	calls := 0

	unsubscribe := n.Subscribe(func(string) { calls++ })
	n.Publish("x")
	unsubscribe()
	unsubscribe()
	n.Publish("y")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, n.Len())
}

func TestListenerMayUnsubscribeDuringPublish(t *testing.T) {
	var n Notifier[int]
	var unsubscribe func()
	calls := 0

	unsubscribe = n.Subscribe(func(int) {
		calls++
		unsubscribe()
	})
	n.Publish(1)
	n.Publish(2)

	assert.Equal(t, 1, calls)
}

func TestClear(t *testing.T) {
	var n Notifier[int]
	n.Subscribe(func(int) {})
	n.Subscribe(func(int) {})
	n.Clear()

	assert.Equal(t, 0, n.Len())
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	var n Notifier[int]
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := n.Subscribe(func(int) {})
			unsub()
		}()
		go func() {
			defer wg.Done()
			n.Publish(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Len())
}

func TestPublishFromListenerIsQueued(t *testing.T) {
	var n Notifier[int]
	var a, b []int

	n.Subscribe(func(v int) {
		a = append(a, v)
		if v == 1 {
			n.Publish(2)
		}
	})
	n.Subscribe(func(v int) { b = append(b, v) })
	n.Publish(1)

	assert.Equal(t, []int{1, 2}, a)
	assert.Equal(t, []int{1, 2}, b)
}

func TestVersionDropsStaleValues(t *testing.T) {
	n := Notifier[int]{Version: func(v int) uint64 { return uint64(v) }}
	var got []int
	n.Subscribe(func(v int) { got = append(got, v) })

	n.Publish(1)
	n.Publish(3)
	n.Publish(2)
	n.Publish(3)
	n.Publish(4)

	assert.Equal(t, []int{1, 3, 4}, got)
}

func TestConcurrentPublishDeliversInVersionOrder(t *testing.T) {
	n := Notifier[int]{Version: func(v int) uint64 { return uint64(v) }}
	var (
		mu  sync.Mutex
		got []int
	)
	n.Subscribe(func(v int) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, v)
	})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			n.Publish(v)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i], got[i-1])
	}
}

func TestPanickingListenerDoesNotBlockLaterPublishes(t *testing.T) {
	var n Notifier[int]
	calls := 0
	n.Subscribe(func(v int) {
		calls++
		if v == 1 {
			panic("boom")
		}
	})

	assert.Panics(t, func() { n.Publish(1) })
	n.Publish(2)
	assert.Equal(t, 2, calls)
}
