package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/service"
)

var (
	// ErrRateLimit marks a remote refusal that should wait the longest delay.
	ErrRateLimit = errors.New("rate limit exceeded")
	// ErrMaxRetries wraps the last failure once every attempt is used.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// RetryableError lets an operation say whether its failure is worth another attempt.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Permanent stops WithRetry on err.
func Permanent(err error) error {
	return &RetryableError{Err: err, Retryable: false}
}

func withRetryDefaults(opts service.RetryOptions) service.RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2
	}
	return opts
}

// backoff returns the wait before the next attempt. Rate limits jump
// straight to the ceiling.
func backoff(opts service.RetryOptions, attempt int, err error) time.Duration {
	if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrSheetsRateLimit) {
		return opts.MaxDelay
	}
	d := float64(opts.InitialDelay)
	for range attempt - 1 {
		d *= opts.Multiplier
		if d >= float64(opts.MaxDelay) {
			return opts.MaxDelay
		}
	}
	return time.Duration(d)
}

// WithRetry runs operation until it succeeds, returns a permanent error,
// the context ends or the attempts run out.
func WithRetry(ctx context.Context, operation func() error, opts service.RetryOptions) error {
	opts = withRetryDefaults(opts)

	var err error
	for attempt := 1; ; attempt++ {
		if err = operation(); err == nil {
			return nil
		}
		var re *RetryableError
		if errors.As(err, &re) && !re.Retryable {
			return re.Err
		}
		if attempt >= opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, attempt, err)
		}

		wait := backoff(opts, attempt, err)
		slog.Warn("Retrying", "attempt", attempt, "of", opts.MaxAttempts, "wait", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// RetryValue is WithRetry for operations that produce a value.
func RetryValue[T any](ctx context.Context, operation func() (T, error), opts service.RetryOptions) (T, error) {
	var result T
	err := WithRetry(ctx, func() error {
		v, err := operation()
		if err == nil {
			result = v
		}
		return err
	}, opts)
	return result, err
}
