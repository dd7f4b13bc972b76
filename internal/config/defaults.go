package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values
const (
	DefaultPublicDir    = "public"
	DefaultManifestPath = "maintain/blobs.manifest.json"
	DefaultURLListPath  = "maintain/blobs-urls.txt"

	// Blob store defaults
	DefaultBlobPrefix     = "images"
	DefaultBlobAPIURL     = "https://blob.vercel-storage.com"
	DefaultBlobAPIVersion = "7"
	DefaultMockHost       = "https://mock.image.irise.storage.top"
	DefaultBlobTimeout    = 30 * time.Second
	DefaultBlobMaxRetries = 3

	// Cache defaults
	DefaultCacheEnabled = false
	DefaultCacheTTL     = 24 * time.Hour

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultDocuments are the document globs, relative to the repository root
var DefaultDocuments = []string{"src/posts/**/*.{md,mdx}"}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".coversync"
	}
	return filepath.Join(home, ".coversync")
}

// CacheDir returns the cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Documents: DefaultDocuments,
		PublicDir: DefaultPublicDir,
		Manifest: ManifestConfig{
			Path:    DefaultManifestPath,
			URLList: DefaultURLListPath,
		},
		Blob: BlobConfig{
			Prefix:     DefaultBlobPrefix,
			APIURL:     DefaultBlobAPIURL,
			APIVersion: DefaultBlobAPIVersion,
			MockHost:   DefaultMockHost,
			Timeout:    DefaultBlobTimeout,
			MaxRetries: DefaultBlobMaxRetries,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
