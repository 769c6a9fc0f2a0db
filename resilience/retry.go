package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/kbukum/stagekit/errors"
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff" validate:"gte=0"`
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff" validate:"gte=0"`
	// Multiplier grows the delay after each retry.
	Multiplier float64 `yaml:"multiplier" mapstructure:"multiplier" validate:"gte=0"`
	// RetryIf reports whether an error is worth retrying.
	RetryIf func(error) bool `yaml:"-" mapstructure:"-"`
	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, wait time.Duration) `yaml:"-" mapstructure:"-"`
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		RetryIf:        DefaultRetryIf,
	}
}

// ApplyDefaults fills unset fields from DefaultRetryConfig.
func (c *RetryConfig) ApplyDefaults() {
	d := DefaultRetryConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.Multiplier <= 0 {
		c.Multiplier = d.Multiplier
	}
	if c.RetryIf == nil {
		c.RetryIf = d.RetryIf
	}
}

// DefaultRetryIf never retries context errors. An AppError is retried only
// when it is marked retryable; any other error is retried.
func DefaultRetryIf(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return true
}

// Retry calls fn until it succeeds, returns an error RetryIf rejects, or
// MaxAttempts is reached, waiting with exponential backoff in between. It
// returns the last error, or ctx's error once ctx ends.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg.ApplyDefaults()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = cfg.InitialBackoff
	policy.MaxInterval = cfg.MaxBackoff
	policy.Multiplier = cfg.Multiplier
	policy.RandomizationFactor = 0.1
	policy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(cfg.MaxAttempts-1)), ctx)

	var result T
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		v, err := fn(ctx)
		if err == nil {
			result = v
			return nil
		}
		if !cfg.RetryIf(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// RetryFunc is Retry for functions that return only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := Retry(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
