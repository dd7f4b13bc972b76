package store

import (
	"context"
	"testing"

	"github.com/quantmind-br/coversync/internal/config"
	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStore(t *testing.T) {
	ctx := context.Background()
	s := NewMockStore("https://mock.image.irise.storage.top/")

	assert.Equal(t, "mock", s.Name())

	obj, err := s.Put(ctx, "images/abc.png", []byte("x"), domain.DefaultPutOptions("image/png"))
	require.NoError(t, err)
	assert.Equal(t, "https://mock.image.irise.storage.top/images/abc.png", obj.URL)
	assert.Equal(t, 1, s.Uploads())

	objects, err := s.List(ctx, "images/abc.png")
	require.NoError(t, err)
	assert.Equal(t, []domain.Object{*obj}, objects)

	objects, err = s.List(ctx, "other/")
	require.NoError(t, err)
	assert.Empty(t, objects)
}

func TestMockStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewMockStore("https://mock")
	_, err := s.Put(ctx, "k", nil, domain.PutOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Uploads())
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.Blob.DryRun = true
	assert.IsType(t, &MockStore{}, New(cfg))

	cfg.Blob.DryRun = false
	cfg.Blob.Token = "tok"
	assert.IsType(t, &VercelStore{}, New(cfg))
}
