package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".coversync"), ExpandPath("~/.coversync"))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, "relative/path", ExpandPath("relative/path"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
}

func TestResolveUnder(t *testing.T) {
	assert.Equal(t, filepath.Join("/repo", "maintain", "m.json"), ResolveUnder("/repo", "maintain/m.json"))
	assert.Equal(t, "/elsewhere/m.json", ResolveUnder("/repo", "/elsewhere/m.json"))
}

func TestRelSlash(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "repo")

	assert.Equal(t, "src/posts/a.md", RelSlash(base, filepath.Join(base, "src", "posts", "a.md")))
	assert.Equal(t, filepath.ToSlash(filepath.Join(string(filepath.Separator), "other", "x.png")),
		RelSlash(base, filepath.Join(string(filepath.Separator), "other", "x.png")))

	// "e" + combining acute (NFD) normalizes to the precomposed form
	assert.Equal(t, "café.png", RelSlash(base, filepath.Join(base, "café.png")))
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()

	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "deeper", "out.txt")
		require.NoError(t, WriteFileAtomic(path, []byte("hello"), 0644))

		got, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
	})

	t.Run("replaces content and keeps mode", func(t *testing.T) {
		path := filepath.Join(dir, "mode.txt")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

		require.NoError(t, WriteFileAtomic(path, []byte("new"), 0644))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
		got, _ := os.ReadFile(path)
		assert.Equal(t, "new", string(got))
	})

	t.Run("leaves no temp files", func(t *testing.T) {
		sub := filepath.Join(dir, "clean")
		require.NoError(t, WriteFileAtomic(filepath.Join(sub, "a.txt"), []byte("a"), 0644))

		entries, err := os.ReadDir(sub)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
