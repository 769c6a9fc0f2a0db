package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/version"
)

// HealthChecker reports the health of every hosted component.
type HealthChecker func(ctx context.Context) []component.Health

// HealthReport is the /health body.
type HealthReport struct {
	Status     component.HealthStatus `json:"status"`
	Service    string                 `json:"service"`
	Timestamp  string                 `json:"timestamp"`
	Components []component.Health     `json:"components"`
}

// Health answers with the folded component health; 503 when any component
// is unhealthy, so a failed stage takes the host out of rotation.
func Health(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := HealthReport{Service: service, Timestamp: now()}
		if checker != nil {
			report.Components = checker(c.Request.Context())
		}
		report.Status = component.Overall(report.Components)

		code := http.StatusOK
		if report.Status == component.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

// LivenessReport is the /alive body.
type LivenessReport struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// Liveness always answers 200 while the process serves HTTP. It does not
// look at the pipeline: a failed stage is reported by Health.
func Liveness(service string) gin.HandlerFunc {
	build := version.Get().Short()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, LivenessReport{
			Status:    "alive",
			Service:   service,
			Version:   build,
			Timestamp: now(),
		})
	}
}

// ReadinessReport is the /ready body.
type ReadinessReport struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Readiness answers "ready", or "not_ready" with 503 once any component is
// unhealthy. Degraded components keep the host ready.
func Readiness(service string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := ReadinessReport{Status: "ready", Service: service, Timestamp: now()}
		code := http.StatusOK
		if checker != nil {
			for _, h := range checker(c.Request.Context()) {
				if h.Status == component.StatusUnhealthy {
					report.Status = "not_ready"
					code = http.StatusServiceUnavailable
					break
				}
			}
		}
		c.JSON(code, report)
	}
}

// Version reports the build information of the running binary.
func Version() gin.HandlerFunc {
	info := version.Get()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, info)
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }
