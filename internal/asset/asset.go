// Package asset resolves the local file behind a cover directive and loads it.
package asset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/quantmind-br/coversync/internal/digest"
	"github.com/quantmind-br/coversync/internal/domain"
)

// Asset is the loaded content of a directive's local file.
type Asset struct {
	Path        string
	Bytes       []byte
	ID          digest.ContentID
	ContentType string
	Width       int
	Height      int
}

// Size returns the asset length in bytes.
func (a *Asset) Size() int64 {
	return int64(len(a.Bytes))
}

// Resolver maps directive paths to filesystem locations.
type Resolver struct {
	root      string
	publicDir string
}

// NewResolver creates a resolver rooted at the repository root. Site-root
// paths (leading "/") resolve below publicDir, itself relative to root.
func NewResolver(root, publicDir string) *Resolver {
	if publicDir == "" {
		publicDir = "public"
	}
	return &Resolver{root: root, publicDir: publicDir}
}

// Resolve returns the absolute location of ref. A leading "/" always means
// site-root, so absolute filesystem paths are only recognised in forms that
// do not start with a slash (e.g. Windows volume paths).
func (r *Resolver) Resolve(ref string) string {
	switch {
	case strings.HasPrefix(ref, "/"):
		return filepath.Join(r.publicRoot(), filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	case filepath.IsAbs(ref):
		return filepath.Clean(ref)
	default:
		return filepath.Join(r.root, filepath.FromSlash(ref))
	}
}

func (r *Resolver) publicRoot() string {
	if filepath.IsAbs(r.publicDir) {
		return r.publicDir
	}
	return filepath.Join(r.root, r.publicDir)
}

// Load resolves ref and reads the asset. A read failure is reported as an
// AssetError wrapping ErrAssetNotFound.
func (r *Resolver) Load(document, ref string) (*Asset, error) {
	abs := r.Resolve(ref)
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, domain.NewAssetError(document, ref, fmt.Errorf("%w: %v", domain.ErrAssetNotFound, err))
	}

	id := digest.NewContentID(b, abs)
	a := &Asset{
		Path:        abs,
		Bytes:       b,
		ID:          id,
		ContentType: digest.ContentType(id.Ext),
	}
	a.Width, a.Height = dimensions(b)
	return a, nil
}

// dimensions probes the image header; unknown formats report zero.
func dimensions(b []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
