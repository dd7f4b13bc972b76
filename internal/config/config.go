package config

import (
	"strings"
	"time"

	"github.com/quantmind-br/coversync/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Root      string         `mapstructure:"root" yaml:"root"`
	Documents []string       `mapstructure:"documents" yaml:"documents"`
	PublicDir string         `mapstructure:"public_dir" yaml:"public_dir"`
	Manifest  ManifestConfig `mapstructure:"manifest" yaml:"manifest"`
	Blob      BlobConfig     `mapstructure:"blob" yaml:"blob"`
	Cache     CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Logging   LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

// ManifestConfig locates the persisted manifest and URL catalog, relative to Root
type ManifestConfig struct {
	Path    string `mapstructure:"path" yaml:"path"`
	URLList string `mapstructure:"url_list" yaml:"url_list"`
}

// BlobConfig contains remote blob store settings
type BlobConfig struct {
	Prefix     string        `mapstructure:"prefix" yaml:"prefix"`
	Token      string        `mapstructure:"token" yaml:"-"`
	APIURL     string        `mapstructure:"api_url" yaml:"api_url"`
	APIVersion string        `mapstructure:"api_version" yaml:"api_version"`
	DryRun     bool          `mapstructure:"dry_run" yaml:"dry_run"`
	MockHost   string        `mapstructure:"mock_host" yaml:"mock_host"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
}

// CacheConfig contains lookup cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level   string `mapstructure:"level" yaml:"level"`
	Format  string `mapstructure:"format" yaml:"format"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Documents) == 0 {
		c.Documents = DefaultDocuments
	}
	if c.PublicDir == "" {
		c.PublicDir = DefaultPublicDir
	}
	if c.Manifest.Path == "" {
		c.Manifest.Path = DefaultManifestPath
	}
	if c.Manifest.URLList == "" {
		c.Manifest.URLList = DefaultURLListPath
	}
	c.Blob.Prefix = strings.Trim(c.Blob.Prefix, "/")
	if c.Blob.Prefix == "" {
		c.Blob.Prefix = DefaultBlobPrefix
	}
	if c.Blob.APIURL == "" {
		c.Blob.APIURL = DefaultBlobAPIURL
	}
	if c.Blob.APIVersion == "" {
		c.Blob.APIVersion = DefaultBlobAPIVersion
	}
	c.Blob.MockHost = strings.TrimRight(c.Blob.MockHost, "/")
	if c.Blob.MockHost == "" {
		c.Blob.MockHost = DefaultMockHost
	}
	if c.Blob.Timeout < time.Second {
		c.Blob.Timeout = DefaultBlobTimeout
	}
	if c.Blob.MaxRetries < 0 {
		c.Blob.MaxRetries = 0
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}
	for _, pattern := range c.Documents {
		if strings.TrimSpace(pattern) == "" {
			return domain.NewConfigError("documents", "empty glob pattern")
		}
	}
	return nil
}

// RequireCredential is the pre-flight check of an apply run: the real blob
// store needs a token, the dry-run mock does not.
func (c *Config) RequireCredential() error {
	if c.Blob.DryRun {
		return nil
	}
	if strings.TrimSpace(c.Blob.Token) == "" {
		return domain.ErrMissingCredential
	}
	return nil
}
