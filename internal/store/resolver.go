package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantmind-br/coversync/internal/cache"
	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/quantmind-br/coversync/internal/utils"
)

// Resolver finds or uploads content-addressed objects in a blob store.
// Keys are content addressed, so a cached key -> URL mapping never goes stale.
type Resolver struct {
	store    domain.BlobStore
	cache    domain.Cache
	cacheTTL time.Duration
	logger   *utils.Logger
}

// ResolverOptions contains options for creating a Resolver
type ResolverOptions struct {
	Cache    domain.Cache
	CacheTTL time.Duration
	Logger   *utils.Logger
}

// NewResolver creates a Resolver over store
func NewResolver(store domain.BlobStore, opts ResolverOptions) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Resolver{
		store:    store,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger.WithComponent("store"),
	}
}

// Provider returns the provider name of the underlying store
func (r *Resolver) Provider() string {
	return r.store.Name()
}

// Find looks up an object whose key equals key exactly
func (r *Resolver) Find(ctx context.Context, key string) (string, bool, error) {
	if u, ok := r.cached(ctx, key); ok {
		return u, true, nil
	}

	objects, err := r.store.List(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("list %s: %w", key, err)
	}
	for _, obj := range objects {
		if obj.Key == key {
			r.remember(ctx, key, obj.URL)
			return obj.URL, true, nil
		}
	}
	return "", false, nil
}

// Upload stores body under key with the content-addressed upload options
func (r *Resolver) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	obj, err := r.store.Put(ctx, key, body, domain.DefaultPutOptions(contentType))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	r.remember(ctx, key, obj.URL)
	return obj.URL, nil
}

func (r *Resolver) cached(ctx context.Context, key string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	value, err := r.cache.Get(ctx, cache.ObjectKey(r.store.Name(), key))
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			r.logger.Debug().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return "", false
	}
	r.logger.Debug().Str("key", key).Msg("Cache hit")
	return string(value), true
}

func (r *Resolver) remember(ctx context.Context, key, url string) {
	if r.cache == nil || url == "" {
		return
	}
	if err := r.cache.Set(ctx, cache.ObjectKey(r.store.Name(), key), []byte(url), r.cacheTTL); err != nil {
		r.logger.Debug().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
