package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Legacy environment variables, still honoured by existing deploy setups
const (
	EnvBlobToken  = "BLOB_READ_WRITE_TOKEN"
	EnvBlobDryRun = "BLOB_DRY_RUN"
)

// Load loads configuration from file, environment, and defaults.
// Uses the global viper instance to access CLI flag bindings
func Load() (*Config, error) {
	return LoadWithViper(viper.GetViper())
}

// LoadWithViper loads configuration through v
func LoadWithViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// An explicit file (--config) replaces the search; SetConfigName would
	// clear it
	explicit := v.ConfigFileUsed()
	if explicit == "" {
		v.SetConfigName("coversync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	// Read config file (ignore if not found unless it was asked for)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || explicit != "" {
			return nil, err
		}
	}

	// Environment variables (COVERSYNC_*)
	v.SetEnvPrefix("COVERSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("blob.token", "COVERSYNC_BLOB_TOKEN", EnvBlobToken)
	_ = v.BindEnv("blob.dry_run", "COVERSYNC_BLOB_DRY_RUN", EnvBlobDryRun)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("documents", DefaultDocuments)
	v.SetDefault("public_dir", DefaultPublicDir)

	v.SetDefault("manifest.path", DefaultManifestPath)
	v.SetDefault("manifest.url_list", DefaultURLListPath)

	v.SetDefault("blob.prefix", DefaultBlobPrefix)
	v.SetDefault("blob.token", "")
	v.SetDefault("blob.api_url", DefaultBlobAPIURL)
	v.SetDefault("blob.api_version", DefaultBlobAPIVersion)
	v.SetDefault("blob.dry_run", false)
	v.SetDefault("blob.mock_host", DefaultMockHost)
	v.SetDefault("blob.timeout", DefaultBlobTimeout)
	v.SetDefault("blob.max_retries", DefaultBlobMaxRetries)

	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.directory", CacheDir())

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
	v.SetDefault("logging.no_color", false)
}
