// Package store provides a registry of named containers.
//
// Containers of different value types are registered through their
// state.Inspectable view, so one Store can back the inspector server and be
// snapshotted as a whole:
//
//	s := store.New()
//	s.MustRegister(state.New(0, state.WithName("count")))
//	s.MustRegister(state.New(Settings{}, state.WithName("settings")))
//
//	if err := s.SaveAll(ctx, snapshots); err != nil {
//	    log.Println(err)
//	}
package store
