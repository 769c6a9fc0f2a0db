package bootstrap

import (
	"fmt"
	"time"

	"github.com/kbukum/stagekit/config"
	"github.com/kbukum/stagekit/observability"
	"github.com/kbukum/stagekit/pipeline"
	"github.com/kbukum/stagekit/server"
)

// DefaultGracefulTimeout bounds the whole shutdown sequence.
const DefaultGracefulTimeout = 15 * time.Second

// Config is the host configuration: the service fields plus one section
// per hosted module.
//
// Example YAML:
//
//	name: camera-host
//	environment: production
//	pipeline:
//	  name: camera
//	  capacity: 4
//	observability:
//	  enabled: true
//	  endpoint: otel-collector:4318
//	server:
//	  enabled: true
//	  port: 8080
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Pipeline        pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Observability   observability.Config `yaml:"observability" mapstructure:"observability"`
	Server          server.Config        `yaml:"server" mapstructure:"server"`
	GracefulTimeout time.Duration        `yaml:"graceful_timeout" mapstructure:"graceful_timeout"`
}

var _ config.Config = (*Config)(nil)

// ApplyDefaults fills unset fields of every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.GracefulTimeout <= 0 {
		c.GracefulTimeout = DefaultGracefulTimeout
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("config.pipeline: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// PipelineOptions returns the options a host should pass to pipeline.New or
// pipeline.NewBuilder. With observability enabled they include the global
// meter and tracer, which start exporting once the providers are installed.
func (c *Config) PipelineOptions(extra ...pipeline.Option) []pipeline.Option {
	opts := c.Pipeline.Options()
	if c.Observability.Enabled {
		opts = append(opts,
			pipeline.WithMeter(observability.Meter(instrumentationName)),
			pipeline.WithTracer(observability.Tracer(instrumentationName)),
		)
	}
	return append(opts, extra...)
}
