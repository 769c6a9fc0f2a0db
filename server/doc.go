// Package server provides the status HTTP server for pipeline hosts, using
// Gin with HTTP/2 cleartext support.
//
// The server follows the component pattern with lifecycle management so
// bootstrap can start it next to the pipeline it reports on.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: Panic recovery with structured logging
//   - RequestID: Request ID generation and propagation
//   - RequestLogger: Request logging with latency tracking
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: Component health aggregation, 503 when unhealthy
//   - /alive: Liveness probe
//   - /ready: Readiness probe, 503 when a component is unhealthy
//   - /version: Build information
//   - /topology: Text topology line with live connector depths
//   - /stages: Per-stage snapshot
//   - /stages/:index: One stage
package server
