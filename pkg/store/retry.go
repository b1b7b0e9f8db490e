package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/goalnet/pkg/network"
)

// RetryableError marks a transient failure (connection reset, timeout,
// busy database) that Retry may attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Retry executes fn up to attempts times with exponential backoff.
// Only errors wrapped in RetryableError are retried; any other error is
// returned immediately. The delay doubles after each failed attempt.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// IsRetryable reports whether err is wrapped in RetryableError.
func IsRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError))
}

// RetryPolicy configures Retrying. The zero value means three attempts
// starting at one second.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.Delay <= 0 {
		p.Delay = time.Second
	}
	return p
}

type retrying struct {
	Store
	policy RetryPolicy
}

// Retrying wraps s so that every operation is retried on transient errors.
func Retrying(s Store, p RetryPolicy) Store {
	return &retrying{Store: s, policy: p.withDefaults()}
}

func (r *retrying) Network(ctx context.Context, userID int64) (*network.Graph, error) {
	var g *network.Graph
	err := Retry(ctx, r.policy.Attempts, r.policy.Delay, func() error {
		var err error
		g, err = r.Store.Network(ctx, userID)
		return err
	})
	return g, err
}

func (r *retrying) PutNetwork(ctx context.Context, userID int64, g *network.Graph) error {
	return Retry(ctx, r.policy.Attempts, r.policy.Delay, func() error {
		return r.Store.PutNetwork(ctx, userID, g)
	})
}

func (r *retrying) SavePosition(ctx context.Context, id int64, x, y float64) error {
	return Retry(ctx, r.policy.Attempts, r.policy.Delay, func() error {
		return r.Store.SavePosition(ctx, id, x, y)
	})
}
