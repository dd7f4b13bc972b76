package pipeline

import (
	"sort"

	"github.com/quantmind-br/coversync/internal/manifest"
)

// PendingItem is a directive a check-only run found out of sync
type PendingItem struct {
	Document string `json:"document"`
	Path     string `json:"path"`
	Reason   string `json:"reason"`
}

// Stats counts what a run did
type Stats struct {
	Documents  int `json:"documents"`
	WithCovers int `json:"withCovers"`
	Covers     int `json:"covers"`
	Written    int `json:"written"`
	Rewritten  int `json:"rewritten"`
	Matched    int `json:"matched"`
	Uploaded   int `json:"uploaded"`
	Reused     int `json:"reused"`
	Skipped    int `json:"skipped"`
	Pending    int `json:"pending"`
}

// RunState is everything one run accumulates: the manifest being updated,
// the URLs it touched, the blob keys already resolved and the pending list.
type RunState struct {
	Manifest *manifest.Manifest
	Pending  []PendingItem
	Stats    Stats

	touched  map[string]struct{}
	resolved map[string]string
}

// NewRunState creates the state of a run starting from m
func NewRunState(m *manifest.Manifest) *RunState {
	if m == nil {
		m = manifest.New()
	}
	return &RunState{
		Manifest: m,
		touched:  make(map[string]struct{}),
		resolved: make(map[string]string),
	}
}

// Touch records a URL referenced by a directive this run
func (s *RunState) Touch(url string) {
	if url != "" {
		s.touched[url] = struct{}{}
	}
}

// TouchedURLs returns the URLs touched this run, sorted
func (s *RunState) TouchedURLs() []string {
	out := make([]string, 0, len(s.touched))
	for u := range s.touched {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Resolved returns the URL a blob key was resolved to earlier in this run
func (s *RunState) Resolved(key string) (string, bool) {
	u, ok := s.resolved[key]
	return u, ok
}

// Resolve remembers the URL of a blob key for the rest of the run
func (s *RunState) Resolve(key, url string) {
	s.resolved[key] = url
}

// AddPending records an out-of-sync directive
func (s *RunState) AddPending(item PendingItem) {
	s.Pending = append(s.Pending, item)
	s.Stats.Pending++
}
