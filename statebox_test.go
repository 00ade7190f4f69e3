package statebox

import (
	"errors"
	"testing"
)

func TestUseStateAndEffect(t *testing.T) {
	count := UseState(0, WithName("count"))

	var seen []int
	Effect(func(n int) { seen = append(seen, n) }, count)

	if err := count.Set(3); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 3 {
		t.Errorf("seen = %v, want [0 3]", seen)
	}
	if count.Name() != "count" {
		t.Errorf("Name() = %q", count.Name())
	}
}

func TestNewWithMode(t *testing.T) {
	c := New("a", WithNotifyMode(NotifyUnlocked))

	var got string
	h := c.Subscribe(func(string) { got = c.Get() })
	if err := c.Set("b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got != "b" {
		t.Errorf("reentrant Get saw %q, want b", got)
	}
	if !c.Unsubscribe(h) {
		t.Error("Unsubscribe returned false")
	}
}

func TestPoisonErrorAlias(t *testing.T) {
	c := New(1)
	func() {
		defer func() { _ = recover() }()
		_ = c.Setter(func(int) int { panic("boom") })
	}()

	err := c.Set(2)
	var pe *PoisonError
	if !errors.As(err, &pe) || !errors.Is(err, ErrPoisoned) {
		t.Errorf("Set on poisoned container = %v", err)
	}
}
