package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/statebox/pkg/snapshot"
	"github.com/vango-dev/statebox/pkg/state"
)

var (
	// ErrDuplicate is returned when registering a name that is taken.
	ErrDuplicate = errors.New("store: duplicate container name")

	// ErrUnnamed is returned when registering a container without a name.
	ErrUnnamed = errors.New("store: container has no name")
)

// DefaultParallelism bounds concurrent snapshot operations in SaveAll and
// RestoreAll.
const DefaultParallelism = 8

// Store maps names to containers. It is safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	containers map[string]state.Inspectable
	parallel   int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		containers: make(map[string]state.Inspectable),
		parallel:   DefaultParallelism,
	}
}

// WithParallelism sets how many containers SaveAll and RestoreAll process at
// once. Values below 1 mean one at a time. It returns s for chaining.
func (s *Store) WithParallelism(n int) *Store {
	s.mu.Lock()
	s.parallel = max(n, 1)
	s.mu.Unlock()
	return s
}

func (s *Store) parallelism() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parallel
}

// Register adds c under c.Name().
func (s *Store) Register(c state.Inspectable) error {
	name := c.Name()
	if name == "" {
		return ErrUnnamed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.containers[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	s.containers[name] = c
	return nil
}

// MustRegister is Register that panics on error.
func (s *Store) MustRegister(c state.Inspectable) {
	if err := s.Register(c); err != nil {
		panic(err)
	}
}

// Lookup returns the container registered under name.
func (s *Store) Lookup(name string) (state.Inspectable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.containers[name]
	return c, ok
}

// Remove unregisters name and reports whether it was present.
// The container itself is untouched.
func (s *Store) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.containers[name]
	delete(s.containers, name)
	return ok
}

// Names returns the registered names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.containers))
	for name := range s.containers {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered containers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.containers)
}

// each calls fn for every container, at most s.parallel at a time, without
// holding the lock. Errors are joined in name order.
func (s *Store) each(fn func(state.Inspectable) error) error {
	names := s.Names()
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(s.parallelism())
	for i, name := range names {
		c, ok := s.Lookup(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			errs[i] = fn(c)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// SaveAll snapshots every container. It keeps going after a failure and
// returns the joined errors.
func (s *Store) SaveAll(ctx context.Context, snapshots snapshot.Store) error {
	return s.each(func(c state.Inspectable) error {
		return snapshot.Save(ctx, snapshots, c)
	})
}

// RestoreAll restores every container that has a snapshot. Containers
// without one keep their value. It returns the number restored and the
// joined errors.
func (s *Store) RestoreAll(ctx context.Context, snapshots snapshot.Store) (int, error) {
	var restored atomic.Int64
	err := s.each(func(c state.Inspectable) error {
		err := snapshot.Restore(ctx, snapshots, c)
		switch {
		case err == nil:
			restored.Add(1)
			return nil
		case errors.Is(err, snapshot.ErrNotFound):
			return nil
		default:
			return err
		}
	})
	return int(restored.Load()), err
}
