package pipeline

import (
	"time"

	"github.com/kbukum/stagekit/validation"
)

// Config holds the settings a host applies to a pipeline.
type Config struct {
	Name           string        `yaml:"name" mapstructure:"name" validate:"required"`
	Capacity       int           `yaml:"capacity" mapstructure:"capacity" validate:"min=1"`
	ReportInterval time.Duration `yaml:"report_interval" mapstructure:"report_interval" validate:"gte=0"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pipeline"
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.ReportInterval == 0 {
		c.ReportInterval = DefaultReportInterval
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Options converts the configuration into pipeline options.
func (c *Config) Options() []Option {
	return []Option{
		WithName(c.Name),
		WithCapacity(c.Capacity),
	}
}
