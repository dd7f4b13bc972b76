package digest_test

import (
	"testing"

	"github.com/quantmind-br/coversync/internal/digest"
	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		digest.Sum(nil))
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		digest.Sum([]byte("hello")))
	assert.Equal(t, digest.Sum([]byte("a")), digest.Sum([]byte("a")))
	assert.NotEqual(t, digest.Sum([]byte("a")), digest.Sum([]byte("a ")))
}

func TestNewContentID(t *testing.T) {
	id := digest.NewContentID([]byte("hello"), "assets/cover.webp")
	assert.Equal(t, ".webp", id.Ext)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824.webp", id.String())

	noExt := digest.NewContentID([]byte("hello"), "assets/cover")
	assert.Equal(t, digest.DefaultExt, noExt.Ext)
}

func TestBlobKey(t *testing.T) {
	id := digest.ContentID{Digest: "abc", Ext: ".png"}

	assert.Equal(t, "images/abc.png", digest.BlobKey("images", id))
	assert.Equal(t, "images/abc.png", digest.BlobKey("/images/", id))
	assert.Equal(t, "abc.png", digest.BlobKey("", id))
	assert.Equal(t, digest.BlobKey("images", id), digest.BlobKey("images", id))
}

func TestFromURL(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   string
		wantOK bool
	}{
		{"empty", "", "", false},
		{"vercel", "https://x.public.blob.vercel-storage.com/images/deadbeef.webp", "deadbeef", true},
		{"no extension", "https://host/images/deadbeef", "deadbeef", true},
		{"double extension strips last", "https://host/a/deadbeef.tar.gz", "deadbeef.tar", true},
		{"no slash", "deadbeef.png", "deadbeef", true},
		{"trailing slash", "https://host/images/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := digest.FromURL(tt.url)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/webp", digest.ContentType(".webp"))
	assert.Equal(t, "image/jpeg", digest.ContentType(".JPG"))
	assert.Equal(t, "image/svg+xml", digest.ContentType(".svg"))
	assert.Equal(t, "application/octet-stream", digest.ContentType(".bin"))
}
