// Package retry provides retry functionality with exponential backoff and
// jitter. In this service it backs the serializable transaction loop of the
// vote ledger: a transaction that fails with a serialization conflict is
// safe to re-run, one that fails validation is not.
// No external dependencies - uses only standard library.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryableError marks an error as safe to retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps an error to indicate the operation may be re-run.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error is marked retryable.
func IsRetryable(err error) bool {
	var retryableErr *RetryableError
	return errors.As(err, &retryableErr)
}

// PermanentError marks an error that must not be retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent wraps an error to indicate the operation must not be re-run.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Config controls the retry loop.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration

	// Multiplier grows the backoff between attempts.
	Multiplier float64

	// Jitter adds up to this fraction of the backoff as random noise,
	// so concurrent conflicting transactions don't re-collide in lockstep.
	Jitter float64
}

// DefaultConfig returns a configuration tuned for short database transactions.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     250 * time.Millisecond,
		Multiplier:     2.0,
		Jitter:         0.2,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is exhausted. Errors wrapped with Retryable are re-run;
// errors wrapped with Permanent (or plain errors) are returned immediately.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := backoff(cfg, attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var permanentErr *PermanentError
		if errors.As(err, &permanentErr) {
			return permanentErr.Err
		}
		if !IsRetryable(err) {
			return err
		}

		lastErr = err
	}

	var retryableErr *RetryableError
	if errors.As(lastErr, &retryableErr) {
		return retryableErr.Err
	}
	return lastErr
}

// backoff computes the wait before the given attempt (1-based for waits).
func backoff(cfg Config, attempt int) time.Duration {
	base := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if max := float64(cfg.MaxBackoff); base > max {
		base = max
	}
	if cfg.Jitter > 0 {
		base += base * cfg.Jitter * rand.Float64()
	}
	return time.Duration(base)
}
