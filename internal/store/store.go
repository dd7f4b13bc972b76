// Package store provides the blob store variants and the content-addressed
// lookup on top of them.
package store

import (
	"github.com/quantmind-br/coversync/internal/config"
	"github.com/quantmind-br/coversync/internal/domain"
)

// New selects the blob store for cfg: the mock in dry-run, Vercel Blob otherwise
func New(cfg *config.Config) domain.BlobStore {
	if cfg.Blob.DryRun {
		return NewMockStore(cfg.Blob.MockHost)
	}

	retry := DefaultRetrierOptions()
	retry.MaxRetries = cfg.Blob.MaxRetries

	return NewVercelStore(VercelOptions{
		APIURL:     cfg.Blob.APIURL,
		APIVersion: cfg.Blob.APIVersion,
		Token:      cfg.Blob.Token,
		Timeout:    cfg.Blob.Timeout,
		Retrier:    retry,
	})
}
