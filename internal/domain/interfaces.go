package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=interfaces.go -destination=../../tests/mocks/domain.go -package=mocks

// BlobStore is the remote content store contract. Two variants exist:
// the real provider and the dry-run mock, selected once at startup.
type BlobStore interface {
	// Name returns the provider name recorded in manifest entries
	Name() string
	// Put uploads body under key and returns the stored object
	Put(ctx context.Context, key string, body []byte, opts PutOptions) (*Object, error)
	// List returns every object whose key starts with prefix
	List(ctx context.Context, prefix string) ([]Object, error)
}

// Cache defines the interface for lookup caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Close releases cache resources
	Close() error
}
