package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSentinelErrors verifies sentinel errors are defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check string
	}{
		{"ErrMissingCredential", ErrMissingCredential, "BLOB_READ_WRITE_TOKEN"},
		{"ErrSyncPending", ErrSyncPending, "pending"},
		{"ErrMalformedDirective", ErrMalformedDirective, "malformed"},
		{"ErrAssetNotFound", ErrAssetNotFound, "asset not found"},
		{"ErrCacheMiss", ErrCacheMiss, "cache miss"},
		{"ErrRateLimited", ErrRateLimited, "rate limited"},
		{"ErrTimeout", ErrTimeout, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.Contains(t, tt.err.Error(), tt.check)
		})
	}
}

func TestAssetError(t *testing.T) {
	err := NewAssetError("src/posts/a.md", "img/cover.webp", ErrAssetNotFound)

	assert.Contains(t, err.Error(), "src/posts/a.md")
	assert.Contains(t, err.Error(), "img/cover.webp")
	assert.ErrorIs(t, err, ErrAssetNotFound)
}

func TestStoreError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := NewStoreError("vercel-blob", "put", "images/abc.webp", 503, errors.New("unavailable"))
		assert.Contains(t, err.Error(), "status 503")
		assert.Contains(t, err.Error(), "images/abc.webp")
	})

	t.Run("without status code", func(t *testing.T) {
		err := NewStoreError("vercel-blob", "list", "images/", 0, errors.New("dial tcp"))
		assert.NotContains(t, err.Error(), "status")
		assert.Contains(t, err.Error(), "dial tcp")
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable wrapper", &RetryableError{Err: errors.New("x")}, true},
		{"429", NewStoreError("p", "put", "k", 429, errors.New("x")), true},
		{"502", NewStoreError("p", "put", "k", 502, errors.New("x")), true},
		{"503", NewStoreError("p", "put", "k", 503, errors.New("x")), true},
		{"504", NewStoreError("p", "put", "k", 504, errors.New("x")), true},
		{"400", NewStoreError("p", "put", "k", 400, errors.New("x")), false},
		{"401", NewStoreError("p", "put", "k", 401, errors.New("x")), false},
		{"wrapped rate limit", fmt.Errorf("upload: %w", ErrRateLimited), true},
		{"timeout", ErrTimeout, true},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestRetryableError_Message(t *testing.T) {
	err := &RetryableError{Err: errors.New("slow down"), RetryAfter: 5}
	assert.Contains(t, err.Error(), "retry after 5s")
	assert.Equal(t, "slow down", errors.Unwrap(err).Error())
}

func TestModeFromOptions(t *testing.T) {
	assert.Equal(t, ModeApply, CommonOptions{}.Mode())
	assert.Equal(t, ModeApply, CommonOptions{DryRun: true}.Mode())
	assert.Equal(t, ModeCheck, CommonOptions{Check: true}.Mode())
	assert.Equal(t, "check", ModeCheck.String())
}
