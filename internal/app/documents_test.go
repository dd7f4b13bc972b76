package app

import (
	"path/filepath"
	"testing"

	"github.com/quantmind-br/coversync/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDocuments(t *testing.T) {
	root := testutil.TempRepo(t)
	for _, rel := range []string{
		"src/posts/b.md",
		"src/posts/a.mdx",
		"src/posts/2024/deep/c.md",
		"src/posts/notes.txt",
		"src/pages/other.md",
	} {
		testutil.WriteFile(t, root, rel, []byte("x"))
	}

	t.Run("expands braces and double star", func(t *testing.T) {
		got, err := FindDocuments(root, []string{"src/posts/**/*.{md,mdx}"})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "src/posts/2024/deep/c.md"),
			filepath.Join(root, "src/posts/a.mdx"),
			filepath.Join(root, "src/posts/b.md"),
		}, got)
	})

	t.Run("merges overlapping patterns", func(t *testing.T) {
		got, err := FindDocuments(root, []string{"./src/**/*.md", "src/posts/*.md"})
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("no matches", func(t *testing.T) {
		got, err := FindDocuments(root, []string{"content/**/*.md"})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := FindDocuments(root, []string{"src/[posts"})
		assert.Error(t, err)
	})
}
