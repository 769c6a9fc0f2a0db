// Package component defines the lifecycle contract for the services a
// pipeline host runs next to its pipeline: telemetry providers, the status
// server and the pipeline itself.
//
// Components are registered with a Registry, started in registration order
// and stopped in reverse order.
//
// # Interfaces
//
//   - Component: Core lifecycle interface (Name/Start/Stop/Health)
//   - Describable: Startup summary descriptions
//   - RouteProvider: HTTP routes for the startup summary
package component
