// Package retry provides bounded retry logic with per-error backoff classes.
//
// Callers classify each failure into a backoff class: rate-limit style
// failures back off exponentially, transient server/network failures wait a
// fixed delay, and fatal failures stop immediately.
//
// Usage:
//
//	err := retry.Do(ctx, retry.Config{MaxAttempts: 3, BaseDelay: time.Second}, func() error {
//	    return client.Call()
//	})
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Class tells Do how to treat a failed attempt.
type Class int

const (
	// Stop aborts immediately; the error is returned as-is.
	Stop Class = iota
	// Linear waits BaseDelay between attempts.
	Linear
	// Exponential waits BaseDelay, doubling after each attempt up to MaxDelay.
	Exponential
)

// Config controls the retry behaviour.
type Config struct {
	// MaxAttempts is the total number of attempts (including the first).
	// Zero or negative values are treated as 1 (no retries).
	MaxAttempts int
	// BaseDelay is the wait before the second attempt.
	BaseDelay time.Duration
	// MaxDelay caps the per-attempt wait for the Exponential class.
	MaxDelay time.Duration
	// Classify maps an error to its backoff class. When nil, every non-nil
	// error is treated as Exponential.
	Classify func(err error) Class
}

// DefaultConfig provides sensible defaults for short-lived network calls.
var DefaultConfig = Config{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    30 * time.Second,
}

// Do calls fn up to cfg.MaxAttempts times. It stops early when ctx is
// cancelled, fn returns nil, or the error classifies as Stop.
// The error from the last attempt is returned.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultConfig.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultConfig.MaxDelay
	}
	classify := cfg.Classify
	if classify == nil {
		classify = func(error) Class { return Exponential }
	}

	expDelay := cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(lastErr, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		class := classify(lastErr)
		if class == Stop {
			return lastErr
		}

		if attempt < cfg.MaxAttempts {
			delay := cfg.BaseDelay
			if class == Exponential {
				delay = expDelay
				expDelay *= 2
				if expDelay > cfg.MaxDelay {
					expDelay = cfg.MaxDelay
				}
			}

			slog.Debug("retry: attempt failed, retrying",
				"attempt", attempt, "max", cfg.MaxAttempts,
				"err", lastErr, "delay", delay)

			select {
			case <-ctx.Done():
				return errors.Join(lastErr, ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}
