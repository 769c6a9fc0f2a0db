package component

import "context"

// Component is a service with a start/stop lifecycle hosted next to a
// pipeline. The pipeline itself is hosted as one.
type Component interface {
	// Name is unique within a Registry.
	Name() string
	Start(ctx context.Context) error
	// Stop releases the component's resources; ctx bounds how long it may
	// take.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// HealthStatus is reported by Component.Health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Overall folds component health into one status: any unhealthy component
// makes the whole unhealthy, otherwise any degraded one makes it degraded.
func Overall(healths []Health) HealthStatus {
	status := StatusHealthy
	for _, h := range healths {
		if h.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if h.Status == StatusDegraded {
			status = StatusDegraded
		}
	}
	return status
}

// Describable components appear in the infrastructure section of the
// startup summary.
type Describable interface {
	Describe() Description
}

// Description is one summary line, rendered "Name [Type]: Details (:Port)".
type Description struct {
	// Name defaults to the component name when empty.
	Name    string
	Type    string
	Details string
	Port    int
}

// RouteProvider components list their HTTP routes in the startup summary.
type RouteProvider interface {
	Routes() []Route
}

type Route struct {
	Method  string
	Path    string
	Handler string
}
