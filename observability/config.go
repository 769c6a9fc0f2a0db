package observability

import (
	"time"

	"github.com/kbukum/stagekit/validation"
)

const (
	defaultEndpoint   = "localhost:4318"
	defaultInterval   = 15 * time.Second
	defaultSampleRate = 1.0
)

// Config configures metric and trace export. When Enabled is false the
// global no-op providers stay in place.
type Config struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval" validate:"gte=0"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = defaultEndpoint
	}
	if c.Interval == 0 {
		c.Interval = defaultInterval
	}
	if c.SampleRate == 0 {
		c.SampleRate = defaultSampleRate
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
