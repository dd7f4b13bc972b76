// Package rewrite patches byte ranges of a document and saves it only when
// something changed.
package rewrite

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/quantmind-br/coversync/internal/directive"
	"github.com/quantmind-br/coversync/internal/utils"
)

// Replacement substitutes Text for the bytes of Span in the original source
type Replacement struct {
	Span directive.Span
	Text []byte
}

// Apply performs the replacements against src in descending start order, so
// earlier offsets stay valid. Replacements whose text equals the current
// bytes are not counted. Overlapping or out-of-range spans are ignored.
func Apply(src []byte, replacements []Replacement) ([]byte, int) {
	if len(replacements) == 0 {
		return src, 0
	}

	ordered := append([]Replacement(nil), replacements...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Span.Start > ordered[j].Span.Start
	})

	out := src
	applied := 0
	limit := len(src)
	for _, r := range ordered {
		if r.Span.Start < 0 || r.Span.Start > r.Span.End || r.Span.End > limit {
			continue
		}
		limit = r.Span.Start
		if bytes.Equal(src[r.Span.Start:r.Span.End], r.Text) {
			continue
		}

		next := make([]byte, 0, len(out)-r.Span.Len()+len(r.Text))
		next = append(next, out[:r.Span.Start]...)
		next = append(next, r.Text...)
		next = append(next, out[r.Span.End:]...)
		out = next
		applied++
	}
	return out, applied
}

// WriteIfChanged saves updated to path only when it differs from original.
// The file mode is kept and the replacement is atomic.
func WriteIfChanged(path string, original, updated []byte) (bool, error) {
	if bytes.Equal(original, updated) {
		return false, nil
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := utils.WriteFileAtomic(path, updated, perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
