package store

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/quantmind-br/coversync/internal/domain"
)

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
	maxRetryAfter   time.Duration
}

// RetrierOptions contains options for creating a Retrier
type RetrierOptions struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// MaxRetryAfter is the longest server-requested wait honoured before
	// giving up on the operation
	MaxRetryAfter time.Duration
}

// DefaultRetrierOptions returns default retrier options
func DefaultRetrierOptions() RetrierOptions {
	return RetrierOptions{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		MaxRetryAfter:   time.Minute,
	}
}

// NewRetrier creates a new Retrier. Zero MaxRetries disables retrying.
func NewRetrier(opts RetrierOptions) *Retrier {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 10 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}
	if opts.MaxRetryAfter <= 0 {
		opts.MaxRetryAfter = time.Minute
	}

	return &Retrier{
		maxRetries:      opts.MaxRetries,
		initialInterval: opts.InitialInterval,
		maxInterval:     opts.MaxInterval,
		multiplier:      opts.Multiplier,
		maxRetryAfter:   opts.MaxRetryAfter,
	}
}

func (r *Retrier) newBackoff(ctx context.Context, lastErr *error) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.Multiplier = r.multiplier
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()

	limited := &retryAfterBackOff{
		BackOff: backoff.WithMaxRetries(b, uint64(r.maxRetries)),
		lastErr: lastErr,
		limit:   r.maxRetryAfter,
	}
	return backoff.WithContext(limited, ctx)
}

// retryAfterBackOff waits at least as long as the last error's Retry-After.
// A request to wait longer than limit stops retrying.
type retryAfterBackOff struct {
	backoff.BackOff
	lastErr *error
	limit   time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop || b.lastErr == nil || *b.lastErr == nil {
		return next
	}

	var retryable *domain.RetryableError
	if !errors.As(*b.lastErr, &retryable) || retryable.RetryAfter <= 0 {
		return next
	}
	wait := time.Duration(retryable.RetryAfter) * time.Second
	if wait > b.limit {
		return backoff.Stop
	}
	return max(wait, next)
}

// RetryWithValue executes an operation with exponential backoff and returns a value.
// The error of the last attempt is returned, not the backoff wrapper.
func RetryWithValue[T any](ctx context.Context, r *Retrier, operation func() (T, error)) (T, error) {
	var result T
	var lastErr error

	err := backoff.Retry(func() error {
		var err error
		result, err = operation()
		if err == nil {
			return nil
		}

		lastErr = err
		if !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, r.newBackoff(ctx, &lastErr))

	if err != nil {
		if lastErr == nil {
			return result, err
		}
		return result, lastErr
	}
	return result, nil
}

// ShouldRetryStatus returns true if the HTTP status code should be retried
func ShouldRetryStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// ParseRetryAfter parses a Retry-After header given in seconds
func ParseRetryAfter(retryAfter string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
