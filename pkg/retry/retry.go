// Package retry runs an operation with exponential backoff while its errors
// are classified as transient.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/c360/brokerboot/errors"
)

// Config provides retry configuration
type Config struct {
	MaxAttempts  int           // Total attempts; values below 1 mean a single attempt
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Upper bound for any delay
	Multiplier   float64       // Growth factor applied after each delay
	AddJitter    bool          // Add up to 25% random delay

	// ShouldRetry decides whether an error is worth another attempt.
	// Nil means errors.IsTransient.
	ShouldRetry func(error) bool
}

// DefaultConfig suits one-off startup checks against a broker
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

func (c Config) normalize() (Config, error) {
	if c.InitialDelay < 0 || c.MaxDelay < 0 || c.Multiplier < 0 {
		return c, errors.WrapInvalid(fmt.Errorf("delays and multiplier cannot be negative"),
			"retry", "Do", "validate config")
	}

	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	if c.Multiplier > 1000 {
		c.Multiplier = 1000
	}
	if c.MaxDelay < c.InitialDelay {
		return c, errors.WrapInvalid(fmt.Errorf("max delay %v below initial delay %v", c.MaxDelay, c.InitialDelay),
			"retry", "Do", "validate config")
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = errors.IsTransient
	}
	return c, nil
}

// Do calls fn until it succeeds, returns an error ShouldRetry rejects,
// runs out of attempts, or ctx is done. The last error from fn is wrapped
// in the result.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg, err := cfg.normalize()
	if err != nil {
		return err
	}

	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !cfg.ShouldRetry(lastErr) {
			return lastErr
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		wait := delay
		if cfg.AddJitter && delay >= 4 {
			wait += time.Duration(rand.Int63n(int64(delay / 4)))
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, lastErr)
		case <-timer.C:
		}

		next := time.Duration(float64(delay) * cfg.Multiplier)
		if next > cfg.MaxDelay || next <= 0 {
			next = cfg.MaxDelay
		}
		delay = next
	}

	return fmt.Errorf("retry failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
