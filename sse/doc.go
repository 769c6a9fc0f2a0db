// Package sse streams periodic pipeline status snapshots to HTTP clients
// as Server-Sent Events.
//
// A Hub fans events out to connected clients from one goroutine; a slow
// client misses snapshots instead of stalling the others. Component wires a
// Hub to a snapshot function and the component lifecycle:
//
//	stream := sse.NewComponent("/stages/stream", time.Second, snapshot, log)
//	engine.GET(stream.Path(), stream.Handler())
//	registry.Register(stream)
package sse
