package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TempRepo creates an empty repository root for a test
func TempRepo(t *testing.T) string {
	t.Helper()

	root, err := os.MkdirTemp("", "coversync-test-*")
	require.NoError(t, err)

	t.Cleanup(func() {
		os.RemoveAll(root)
	})

	return root
}

// WriteFile writes content to rel below root, creating parent directories
func WriteFile(t *testing.T, root, rel string, content []byte) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}

// ReadFile reads rel below root
func ReadFile(t *testing.T, root, rel string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether rel exists below root
func Exists(root, rel string) bool {
	_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	return err == nil
}
