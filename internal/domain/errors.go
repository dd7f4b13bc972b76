package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	// ErrMissingCredential indicates the blob store token is absent outside dry-run
	ErrMissingCredential = errors.New("missing blob store credential (set BLOB_READ_WRITE_TOKEN)")

	// ErrSyncPending indicates a check-only run found directives out of sync
	ErrSyncPending = errors.New("cover sync pending")

	// ErrMalformedDirective indicates a cover block without the expected fence structure
	ErrMalformedDirective = errors.New("malformed cover directive")

	// ErrAssetNotFound indicates the local asset referenced by a directive could not be read
	ErrAssetNotFound = errors.New("asset not found")

	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited indicates rate limiting was encountered
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates a timeout occurred
	ErrTimeout = errors.New("timeout")
)

// AssetError represents a failure to load the asset behind a directive
type AssetError struct {
	Document string
	Path     string
	Err      error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s (in %s): %v", e.Path, e.Document, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// NewAssetError creates a new AssetError
func NewAssetError(document, path string, err error) *AssetError {
	return &AssetError{
		Document: document,
		Path:     path,
		Err:      err,
	}
}

// StoreError represents an error returned by the remote blob store
type StoreError struct {
	Provider   string
	Op         string
	Key        string
	StatusCode int
	Err        error
}

func (e *StoreError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s %s: status %d: %v", e.Provider, e.Op, e.Key, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Provider, e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError
func NewStoreError(provider, op, key string, statusCode int, err error) *StoreError {
	return &StoreError{
		Provider:   provider,
		Op:         op,
		Key:        key,
		StatusCode: statusCode,
		Err:        err,
	}
}

// RetryableError indicates an error that can be retried
type RetryableError struct {
	Err        error
	RetryAfter int // Seconds to wait before retry, 0 if unknown
}

func (e *RetryableError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("retryable error (retry after %ds): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("retryable error: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var retryable *RetryableError
	if errors.As(err, &retryable) {
		return true
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		switch storeErr.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTimeout)
}

// ConfigError represents an invalid or incomplete configuration
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for %s: %s", e.Field, e.Message)
}

// NewConfigError creates a new ConfigError
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}
