package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vango-dev/statebox/pkg/state"
)

// CurrentVersion is the envelope format version written by Save.
// Increment when making breaking changes to the format.
const CurrentVersion = 1

// Envelope is the stored form of one snapshot.
type Envelope struct {
	// Name is the container name.
	Name string `json:"name"`

	// Version is the envelope format version.
	Version int `json:"version"`

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time `json:"saved_at"`

	// Value is the container value as produced by ValueJSON.
	Value json.RawMessage `json:"value"`
}

// Encode marshals an envelope for c's current value.
func Encode(c state.Inspectable) ([]byte, error) {
	if c.Name() == "" {
		return nil, ErrUnnamed
	}
	if c.Stats().Poisoned {
		return nil, fmt.Errorf("snapshot %s: %w", c.Name(), state.ErrPoisoned)
	}

	value, err := c.ValueJSON()
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: encode value: %w", c.Name(), err)
	}
	return json.Marshal(Envelope{
		Name:    c.Name(),
		Version: CurrentVersion,
		SavedAt: time.Now().UTC(),
		Value:   value,
	})
}

// Decode unmarshals and checks an envelope.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("snapshot: decode envelope: %w", err)
	}
	if env.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, env.Version)
	}
	return &env, nil
}

// Save stores c's current value under c.Name().
func Save(ctx context.Context, store Store, c state.Inspectable) error {
	data, err := Encode(c)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, c.Name(), data); err != nil {
		return fmt.Errorf("snapshot %s: save: %w", c.Name(), err)
	}
	return nil
}

// Restore loads the snapshot stored under c.Name() and sets it on c.
// It returns an error wrapping ErrNotFound if there is none.
func Restore(ctx context.Context, store Store, c state.Inspectable) error {
	if c.Name() == "" {
		return ErrUnnamed
	}

	data, err := store.Load(ctx, c.Name())
	if err != nil {
		return fmt.Errorf("snapshot %s: load: %w", c.Name(), err)
	}
	if data == nil {
		return fmt.Errorf("snapshot %s: %w", c.Name(), ErrNotFound)
	}

	env, err := Decode(data)
	if err != nil {
		return err
	}
	if err := c.SetJSON(ctx, env.Value); err != nil {
		return fmt.Errorf("snapshot %s: restore: %w", c.Name(), err)
	}
	return nil
}
