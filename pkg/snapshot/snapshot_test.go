package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/vango-dev/statebox/pkg/state"
)

type cart struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func TestSaveRestore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	src := state.New(cart{Items: []string{"apple"}, Total: 3}, state.WithName("cart"))
	if err := Save(ctx, store, src); err != nil {
		t.Fatalf("Save: %v", err)
	}

	dst := state.New(cart{}, state.WithName("cart"))
	var notified int
	dst.Subscribe(func(cart) { notified++ })

	if err := Restore(ctx, store, dst); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	got := dst.Get()
	if got.Total != 3 || len(got.Items) != 1 || got.Items[0] != "apple" {
		t.Errorf("unexpected restored value %+v", got)
	}
	if notified != 1 {
		t.Errorf("expected one notification, got %d", notified)
	}

	// Restoring the same value again is an equal write
	if err := Restore(ctx, store, dst); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if notified != 1 {
		t.Errorf("equal restore notified again: %d", notified)
	}
}

func TestEnvelopeFormat(t *testing.T) {
	data, err := Encode(state.New(42, state.WithName("answer")))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	for _, field := range []string{"name", "version", "saved_at", "value"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("envelope missing %q: %s", field, data)
		}
	}
	if string(raw["value"]) != "42" {
		t.Errorf("expected value 42, got %s", raw["value"])
	}
}

func TestRestoreErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := state.New(0, state.WithName("n"))
	if err := Restore(ctx, store, c); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	store.Save(ctx, "n", []byte(`{"name":"n","version":99,"value":1}`))
	if err := Restore(ctx, store, c); !errors.Is(err, ErrVersion) {
		t.Errorf("expected ErrVersion, got %v", err)
	}

	store.Save(ctx, "n", []byte(`{"name":"n","version":1,"value":"text"}`))
	if err := Restore(ctx, store, c); !errors.Is(err, state.ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}

	store.Save(ctx, "n", []byte(`not json`))
	if err := Restore(ctx, store, c); err == nil {
		t.Error("expected envelope decode error")
	}

	unnamed := state.New(0)
	if err := Save(ctx, store, unnamed); !errors.Is(err, ErrUnnamed) {
		t.Errorf("Save: expected ErrUnnamed, got %v", err)
	}
	if err := Restore(ctx, store, unnamed); !errors.Is(err, ErrUnnamed) {
		t.Errorf("Restore: expected ErrUnnamed, got %v", err)
	}
}

func TestSavePoisoned(t *testing.T) {
	c := state.New(0, state.WithName("p"))
	c.Subscribe(func(int) { panic("boom") })
	func() {
		defer func() { recover() }()
		c.Set(1)
	}()

	if err := Save(context.Background(), NewMemoryStore(), c); !errors.Is(err, state.ErrPoisoned) {
		t.Errorf("expected ErrPoisoned, got %v", err)
	}
}
