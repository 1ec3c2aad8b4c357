package jobcontext

import (
	"context"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds the exponential backoff around one idempotent call
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsedTime  time.Duration
}

// DefaultRetryPolicy returns the policy used for downloads and AI calls
func DefaultRetryPolicy(maxElapsed time.Duration) RetryPolicy {
	if maxElapsed <= 0 {
		maxElapsed = 30 * time.Second
	}
	return RetryPolicy{
		InitialInterval: 2 * time.Second,
		MaxInterval:     10 * time.Second,
		MaxElapsedTime:  maxElapsed,
	}
}

// Retry runs op until it succeeds, returns a non-retryable error, the policy
// runs out or ctx is done. The last error from op is returned.
func Retry(ctx context.Context, policy RetryPolicy, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		bo.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		bo.MaxInterval = policy.MaxInterval
	}
	bo.MaxElapsedTime = policy.MaxElapsedTime

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(bo, ctx))
}

// RetryWithResult is Retry for operations that produce a value
func RetryWithResult[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	var result T
	err := Retry(ctx, policy, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}
