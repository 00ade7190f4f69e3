// Package server exposes a store.Store over HTTP for inspection.
//
// Routes:
//
//	GET  /healthz                 "ok"
//	GET  /states                  [{"name": ..., "stats": {...}}, ...]
//	GET  /states/{name}           {"name": ..., "value": ..., "stats": {...}}
//	PUT  /states/{name}           body is the new JSON value; 204 on success
//	POST /states/{name}/compact   {"removed": n}
//	GET  /states/{name}/watch     WebSocket stream of value frames
//	GET  /metrics                 Prometheus exposition (if a Gatherer is set)
//
// A watch connection receives the current value first and then one frame per
// change. The watch subscription never blocks the writer: when a client falls
// behind, frames are dropped and the next frame reports how many.
//
// The handler is a chi router and can be mounted into a larger one:
//
//	r := chi.NewRouter()
//	r.Mount("/debug/state", server.New(s, nil).Handler())
package server
