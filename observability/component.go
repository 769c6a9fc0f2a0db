package observability

import (
	"context"
	stderrors "errors"
	"sync"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/logger"
)

// Component installs the meter and tracer providers on Start and flushes
// them on Stop.
type Component struct {
	cfg Config
	id  Identity
	log *logger.Logger

	mu     sync.RWMutex
	meter  *sdkmetric.MeterProvider
	tracer *sdktrace.TracerProvider
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the providers component for a service.
func NewComponent(cfg Config, id Identity) *Component {
	return &Component{cfg: cfg, id: id, log: logger.Get("observability")}
}

func (c *Component) Name() string { return "observability" }

// Start creates both providers and installs them globally.
func (c *Component) Start(ctx context.Context) error {
	mp, err := NewMeterProvider(ctx, c.cfg, c.id)
	if err != nil {
		return err
	}
	tp, err := NewTracerProvider(ctx, c.cfg, c.id)
	if err != nil {
		_ = mp.Shutdown(ctx)
		return err
	}
	install(mp, tp)

	c.mu.Lock()
	c.meter, c.tracer = mp, tp
	c.mu.Unlock()

	c.log.Info("Telemetry providers installed", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"interval", c.cfg.Interval.String(),
		"sample_rate", c.cfg.SampleRate,
	))
	return nil
}

// Stop flushes and shuts down both providers.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.Lock()
	mp, tp := c.meter, c.tracer
	c.meter, c.tracer = nil, nil
	c.mu.Unlock()

	var errs []error
	if tp != nil {
		errs = append(errs, tp.Shutdown(ctx))
	}
	if mp != nil {
		errs = append(errs, mp.Shutdown(ctx))
	}
	return stderrors.Join(errs...)
}

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.meter == nil || c.tracer == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "providers not started"
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "OpenTelemetry",
		Type:    "observability",
		Details: c.cfg.Endpoint,
	}
}
