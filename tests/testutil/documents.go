package testutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// MockHost is the dry-run URL host used across tests
const MockHost = "https://mock.image.irise.storage.top"

// PNG returns a w x h PNG filled with c
func PNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// Digest returns the hex SHA-256 of b
func Digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// MockURL is the URL the dry-run store assigns to content b with ext
func MockURL(b []byte, ext string) string {
	return MockHost + "/images/" + Digest(b) + ext
}

// Cover renders a cover directive with the given key/value lines
func Cover(pairs ...string) string {
	var sb strings.Builder
	sb.WriteString(":::cover\n")
	for i := 0; i+1 < len(pairs); i += 2 {
		sb.WriteString(pairs[i])
		sb.WriteString(`="`)
		sb.WriteString(pairs[i+1])
		sb.WriteString("\"\n")
	}
	sb.WriteString(":::")
	return sb.String()
}
