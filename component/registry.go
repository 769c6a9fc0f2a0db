package component

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/stagekit/logger"
)

// DefaultStopTimeout bounds each component's Stop during StopAll.
const DefaultStopTimeout = 10 * time.Second

// Registry starts components in registration order and stops the started
// ones in reverse, so a component may rely on everything registered before
// it for its whole lifetime.
type Registry struct {
	mu          sync.RWMutex
	components  []Component
	byName      map[string]Component
	started     []Component
	stopTimeout time.Duration
	log         *logger.Logger
}

type RegistryOption func(*Registry)

// WithStopTimeout sets the deadline of each component's Stop. Non-positive
// values keep DefaultStopTimeout.
func WithStopTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.stopTimeout = d
		}
	}
}

func WithRegistryLogger(l *logger.Logger) RegistryOption {
	return func(r *Registry) { r.log = l }
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName:      make(map[string]Component),
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get("registry")
	}
	return r
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	r.components = append(r.components, c)
	r.byName[name] = c
	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component not started yet, in registration order.
// It returns at the first failure and leaves the components already
// started running, for StopAll to release.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Starting components", logger.Fields("count", len(r.components)))
	for _, c := range r.components[len(r.started):] {
		name := c.Name()
		if err := c.Start(ctx); err != nil {
			r.log.Error("Component start failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		r.started = append(r.started, c)
		r.log.Debug("Component started", logger.Fields(logger.FieldComponent, name))
	}
	return nil
}

// StopAll stops the started components in reverse order, each under its
// own deadline derived from ctx. Every component is stopped even when an
// earlier one fails; the failures are returned joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("Stopping components", logger.Fields("count", len(r.started)))
	var errs []error
	for len(r.started) > 0 {
		last := len(r.started) - 1
		c := r.started[last]
		r.started = r.started[:last]

		if err := r.stopOne(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", stderrors.Join(errs...))
	}
	return nil
}

func (r *Registry) stopOne(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()

	name := c.Name()
	if err := c.Stop(ctx); err != nil {
		r.log.Error("Component stop failed", logger.Fields(logger.FieldComponent, name, logger.FieldError, err.Error()))
		return fmt.Errorf("failed to stop %s: %w", name, err)
	}
	r.log.Info("Component stopped", logger.Fields(logger.FieldComponent, name))
	return nil
}

// HealthAll reports every registered component, started or not, in
// registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.components))
	for i, c := range r.components {
		out[i] = c.Health(ctx)
	}
	return out
}

// Get returns the component registered under name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Component(nil), r.components...)
}
