package state

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestConcurrentSetter(t *testing.T) {
	c := New(0)
	var notified atomic.Int64
	c.Subscribe(func(int) { notified.Add(1) })

	const workers, iterations = 50, 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if err := c.Setter(func(n int) int { return n + 1 }); err != nil {
					t.Errorf("Setter: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := c.Get(); got != workers*iterations {
		t.Errorf("expected %d, got %d (lost updates)", workers*iterations, got)
	}
	if got := notified.Load(); got != workers*iterations {
		t.Errorf("expected %d notifications, got %d", workers*iterations, got)
	}
}

func TestLockedPassesDoNotInterleave(t *testing.T) {
	c := New(0)
	var inside atomic.Int32
	var overlaps atomic.Int32
	c.Subscribe(func(int) {
		if inside.Add(1) > 1 {
			overlaps.Add(1)
		}
		inside.Add(-1)
	})

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Set(i)
		}()
	}
	wg.Wait()

	if overlaps.Load() != 0 {
		t.Errorf("notification passes overlapped %d times", overlaps.Load())
	}
}

func TestConcurrentSubscriptionBookkeeping(t *testing.T) {
	c := New(0)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			h := c.Subscribe(func(int) {})
			if !c.Unsubscribe(h) {
				// a concurrent Compact moved the slot
				if c.Rebind(h) {
					c.Unsubscribe(h)
				}
			}
		}()
		go func() {
			defer wg.Done()
			c.Setter(func(n int) int { return n + 1 })
		}()
		go func() {
			defer wg.Done()
			c.Compact()
		}()
	}
	wg.Wait()

	// Drain whatever lost a race with Compact twice in a row
	c.Compact()
	if st := c.Stats(); st.Tombstoned != 0 {
		t.Errorf("expected no tombstones after final compact, got %+v", st)
	}
	if c.Get() != 50 {
		t.Errorf("expected 50, got %d", c.Get())
	}
}
