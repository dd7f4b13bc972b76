package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FileState is the content and modification time of a file
type FileState struct {
	Content string
	ModTime time.Time
}

// Snapshot records every regular file below root
func Snapshot(t *testing.T, root string) map[string]FileState {
	t.Helper()

	out := make(map[string]FileState)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		out[filepath.ToSlash(rel)] = FileState{Content: string(data), ModTime: info.ModTime()}
		return nil
	})
	require.NoError(t, err)
	return out
}

// AssertTreeUnchanged asserts root holds exactly the files of before, byte
// for byte and with the same modification times
func AssertTreeUnchanged(t *testing.T, root string, before map[string]FileState) {
	t.Helper()

	after := Snapshot(t, root)
	assert.Equal(t, len(before), len(after), "file count changed")
	for rel, state := range before {
		got, ok := after[rel]
		if !assert.True(t, ok, "file %s disappeared", rel) {
			continue
		}
		assert.Equal(t, state.Content, got.Content, "content of %s changed", rel)
		assert.True(t, state.ModTime.Equal(got.ModTime), "mtime of %s changed", rel)
	}
}
