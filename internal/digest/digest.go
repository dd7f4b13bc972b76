// Package digest computes content identities and the blob keys derived from them.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultExt is used when the asset file name carries no extension.
const DefaultExt = ".bin"

// Sum returns the lowercase hex SHA-256 of b.
func Sum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// ContentID identifies asset content for storage purposes.
type ContentID struct {
	Digest string
	Ext    string
}

// NewContentID hashes b and pairs the digest with the extension of name.
func NewContentID(b []byte, name string) ContentID {
	return ContentID{Digest: Sum(b), Ext: ExtOf(name)}
}

// String returns the manifest item key, e.g. "<digest>.webp".
func (c ContentID) String() string {
	return c.Digest + c.Ext
}

// ExtOf returns the extension of name, or DefaultExt when there is none.
func ExtOf(name string) string {
	if ext := filepath.Ext(name); ext != "" {
		return ext
	}
	return DefaultExt
}

// BlobKey derives the remote object key for id under prefix.
func BlobKey(prefix string, id ContentID) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return id.String()
	}
	return prefix + "/" + id.String()
}

var trailingExt = regexp.MustCompile(`\.[a-zA-Z0-9]+$`)

// FromURL extracts the digest a content-addressed URL encodes in its last
// path segment. It only works for providers that keep the key's file name
// as the final URL segment.
func FromURL(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	last := rawURL
	if i := strings.LastIndex(rawURL, "/"); i >= 0 {
		last = rawURL[i+1:]
	}
	return trailingExt.ReplaceAllString(last, ""), true
}

var contentTypes = map[string]string{
	".webp": "image/webp",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".avif": "image/avif",
	".svg":  "image/svg+xml",
}

// ContentType maps an extension to its MIME type.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}
