package llm

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy configures exponential-backoff retries around model calls.
type RetryPolicy struct {
	MaxRetries        int     // retry attempts beyond the initial call
	BaseDelay         float64 // first backoff delay in seconds
	MaxDelay          float64 // backoff cap in seconds
	BackoffMultiplier float64
	Jitter            bool
	OnRetry           func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns the default policy: three attempts total.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        2,
		BaseDelay:         1.0,
		MaxDelay:          60.0,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// Delay calculates the delay for attempt n (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := math.Min(p.BaseDelay*math.Pow(p.BackoffMultiplier, float64(attempt)), p.MaxDelay)
	if p.Jitter {
		// +/- 50% jitter
		delay = delay * (0.5 + rand.Float64())
	}
	return time.Duration(delay * float64(time.Second))
}

// delayFor picks the wait before the next call: the backoff schedule, or the
// provider's Retry-After when one was given. A Retry-After beyond the cap
// means waiting is pointless; ok is false and the caller gives up.
func (p RetryPolicy) delayFor(err error, attempt int) (delay time.Duration, ok bool) {
	if rl, isRL := err.(*RateLimitError); isRL && rl.RetryAfter != nil {
		wait := time.Duration(*rl.RetryAfter * float64(time.Second))
		if wait > time.Duration(p.MaxDelay*float64(time.Second)) {
			return 0, false
		}
		return wait, true
	}
	return p.Delay(attempt), true
}

// Retry executes fn under the policy. Only errors classified as retryable
// by IsRetryable are retried; others propagate immediately.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	result, err := fn(ctx)
	for attempt := 0; err != nil && attempt < policy.MaxRetries; attempt++ {
		if !IsRetryable(err) {
			return zero, err
		}

		delay, ok := policy.delayFor(err, attempt)
		if !ok {
			return zero, err
		}

		if policy.OnRetry != nil {
			policy.OnRetry(err, attempt+1, delay)
		}

		select {
		case <-ctx.Done():
			return zero, &AbortError{ClientError: ClientError{Message: "request cancelled during retry", Cause: ctx.Err()}}
		case <-time.After(delay):
		}

		result, err = fn(ctx)
	}

	if err != nil {
		return zero, err
	}
	return result, nil
}
