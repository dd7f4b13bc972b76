package domain

// Object is a stored blob as reported by the remote store
type Object struct {
	Key string `json:"pathname"`
	URL string `json:"url"`
}

// PutOptions mirrors the upload options of the blob store
type PutOptions struct {
	Access         string
	ContentType    string
	CacheControl   string
	AllowOverwrite bool
}

// Upload defaults for content-addressed objects
const (
	AccessPublic          = "public"
	ImmutableCacheControl = "public, max-age=31536000, immutable"
)

// DefaultPutOptions returns the options used for content-addressed uploads
func DefaultPutOptions(contentType string) PutOptions {
	return PutOptions{
		Access:         AccessPublic,
		ContentType:    contentType,
		CacheControl:   ImmutableCacheControl,
		AllowOverwrite: false,
	}
}
