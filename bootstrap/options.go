package bootstrap

import (
	"time"

	"github.com/kbukum/stagekit/component"
	"github.com/kbukum/stagekit/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	gracefulTimeout *time.Duration
	components      []component.Component
	reporter        *bool
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout overrides the config's graceful shutdown timeout.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithComponent registers an extra component, such as a device or socket
// the pipeline's components share. Extra components start after the
// observability providers and before the status server and the pipeline.
func WithComponent(c component.Component) Option {
	return func(o *appOptions) {
		o.components = append(o.components, c)
	}
}

// WithReporter enables or disables the periodic status log. It is enabled
// by default.
func WithReporter(enabled bool) Option {
	return func(o *appOptions) {
		o.reporter = &enabled
	}
}
