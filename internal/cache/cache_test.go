package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/quantmind-br/coversync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryCache(t *testing.T) *BadgerCache {
	t.Helper()
	c, err := NewBadgerCache(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Empty(t, opts.Directory)
	assert.False(t, opts.InMemory)
	assert.False(t, opts.Logger)
}

func TestGenerateKey(t *testing.T) {
	key1 := GenerateKey("images/abc.png")
	key2 := GenerateKey("images/abc.png")
	key3 := GenerateKey("images/abd.png")

	assert.Equal(t, key1, key2)
	assert.NotEqual(t, key1, key3)
	assert.Len(t, key1, 64)
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "object:vercel-blob/images/abc.png", ObjectKey("vercel-blob", "images/abc.png"))
	assert.NotEqual(t, ObjectKey("mock", "images/abc.png"), ObjectKey("vercel-blob", "images/abc.png"))
}

func TestNewBadgerCache(t *testing.T) {
	t.Run("creates in-memory cache", func(t *testing.T) {
		c, err := NewBadgerCache(Options{InMemory: true})
		require.NoError(t, err)
		assert.NotNil(t, c)
		require.NoError(t, c.Close())
	})

	t.Run("creates file-based cache with temp directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		c, err := NewBadgerCache(Options{Directory: tmpDir})
		require.NoError(t, err)
		require.NoError(t, c.Close())
	})

	t.Run("creates file-based cache in default location", func(t *testing.T) {
		tmpDir := t.TempDir()
		t.Setenv("HOME", tmpDir)

		c, err := NewBadgerCache(Options{})
		require.NoError(t, err)
		require.NoError(t, c.Close())

		_, err = os.Stat(filepath.Join(tmpDir, ".coversync", "cache"))
		assert.NoError(t, err)
	})
}

func TestBadgerCache_Get(t *testing.T) {
	t.Run("returns cache miss for missing key", func(t *testing.T) {
		c := newMemoryCache(t)

		value, err := c.Get(context.Background(), ObjectKey("mock", "images/missing.png"))
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		assert.Nil(t, value)
	})

	t.Run("retrieves stored value", func(t *testing.T) {
		c := newMemoryCache(t)
		ctx := context.Background()
		key := ObjectKey("mock", "images/abc.png")

		require.NoError(t, c.Set(ctx, key, []byte("https://cdn/images/abc.png"), time.Hour))

		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, []byte("https://cdn/images/abc.png"), got)
	})
}

func TestBadgerCache_Set(t *testing.T) {
	t.Run("overwrites existing value", func(t *testing.T) {
		c := newMemoryCache(t)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", []byte("v1"), time.Hour))
		require.NoError(t, c.Set(ctx, "k", []byte("v2"), time.Hour))

		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		c := newMemoryCache(t)
		ctx := context.Background()

		require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
		got, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})
}

func TestBadgerCache_ClearAndSize(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Hour))
	}
	assert.Equal(t, int64(5), c.Size())

	require.NoError(t, c.Clear())
	assert.Equal(t, int64(0), c.Size())
}

func TestBadgerCache_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := NewBadgerCache(Options{Directory: dir})
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, c.Close())

	reopened, err := NewBadgerCache(Options{Directory: dir})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestBadgerCache_ConcurrentAccess(t *testing.T) {
	c := newMemoryCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			assert.NoError(t, c.Set(ctx, key, []byte(key), time.Hour))
			got, err := c.Get(ctx, key)
			assert.NoError(t, err)
			assert.Equal(t, []byte(key), got)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(20), c.Size())
}
