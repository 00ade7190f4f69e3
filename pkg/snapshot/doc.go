// Package snapshot persists container values.
//
// A snapshot is a JSON Envelope holding one container's value, stored under
// the container's name in a Store. MemoryStore keeps snapshots in process;
// S3Store writes them to an S3 bucket.
//
//	store := snapshot.NewMemoryStore()
//	if err := snapshot.Save(ctx, store, count); err != nil {
//	    return err
//	}
//	// later, possibly in another process
//	if err := snapshot.Restore(ctx, store, count); err != nil && !errors.Is(err, snapshot.ErrNotFound) {
//	    return err
//	}
//
// Restore writes through the container's normal Set path, so subscribers
// are notified if the restored value differs from the current one.
package snapshot
