package errors

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryPolicy describes how often and how patiently a retryable operation is repeated.
type RetryPolicy struct {
	Retries    int
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	// OnRetry, when set, is called before each wait with the attempt about to run.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy retries three times. Retry n waits Initial×2^n, so 200ms, 400ms, 800ms,
// capped at 5s.
var DefaultRetryPolicy = RetryPolicy{
	Retries:    3,
	Initial:    100 * time.Millisecond,
	Max:        5 * time.Second,
	Multiplier: 2,
}

// WithRetry runs fn under DefaultRetryPolicy.
func WithRetry(ctx context.Context, fn func() error) error {
	return DefaultRetryPolicy.Do(ctx, fn)
}

// Do calls fn until it succeeds, returns an error that is not retryable, or the retries run out.
// The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 0; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		if err = fn(); err == nil || !IsRetryable(err) || attempt >= p.Retries {
			return err
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(p.backoff(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	d := time.Duration(float64(p.Initial) * math.Pow(multiplier, float64(attempt)))
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

// IsRetryable reports whether err wraps an AppError marked retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr != nil && appErr.Retryable
}
