// Package config loads the static configuration of a datagit repository.
//
// Settings are read from .datagit/config.yaml and may be overridden by DATAGIT_* environment variables,
// e.g. DATAGIT_PUSHTHREADS=20.
package config

import (
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/oneconcern/datagit/pkg/core/status"
	"github.com/oneconcern/datagit/pkg/hashfs"
	"github.com/spf13/viper"
)

// EnvPrefix for environment variables overriding settings
const EnvPrefix = "DATAGIT"

// S3Config holds the settings of an S3 bucket
type S3Config struct {
	Region          string `mapstructure:"region" yaml:"region,omitempty"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Profile         string `mapstructure:"profile" yaml:"profile,omitempty"`
	AccessKeyID     string `mapstructure:"accessKeyId" yaml:"accessKeyId,omitempty"`
	SecretAccessKey string `mapstructure:"secretAccessKey" yaml:"secretAccessKey,omitempty"`
}

// GCSConfig holds the settings of a GCS bucket
type GCSConfig struct {
	Credentials string `mapstructure:"credentials" yaml:"credentials,omitempty"`
}

// LocalConfig holds the settings of a local backend
type LocalConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// StorageConfig holds backend settings, per bucket or name
type StorageConfig struct {
	S3H    map[string]S3Config    `mapstructure:"s3h" yaml:"s3h,omitempty"`
	GCSH   map[string]GCSConfig   `mapstructure:"gcsh" yaml:"gcsh,omitempty"`
	LocalH map[string]LocalConfig `mapstructure:"localh" yaml:"localh,omitempty"`
}

// Config of a repository
type Config struct {
	BlockSize   string        `mapstructure:"blockSize" yaml:"blockSize"`
	PushThreads int           `mapstructure:"pushThreads" yaml:"pushThreads"`
	Retry       int           `mapstructure:"retry" yaml:"retry"`
	Levels      int           `mapstructure:"levels" yaml:"levels"`
	Window      int           `mapstructure:"window" yaml:"window"`
	RateLimit   float64       `mapstructure:"rateLimit" yaml:"rateLimit"`
	Scheme      string        `mapstructure:"scheme" yaml:"scheme"`
	CacheSize   int           `mapstructure:"cacheSize" yaml:"cacheSize"`
	LogLevel    string        `mapstructure:"loglevel" yaml:"loglevel"`
	Storage     StorageConfig `mapstructure:"storage" yaml:"storage"`
}

// SetDefaults registers default settings
func SetDefaults(v *viper.Viper) {
	v.SetDefault("blockSize", "256KiB")
	v.SetDefault("pushThreads", 10)
	v.SetDefault("retry", 2)
	v.SetDefault("levels", hashfs.DefaultLevels)
	v.SetDefault("window", 20)
	v.SetDefault("rateLimit", 0)
	v.SetDefault("scheme", hashfs.SchemeCID)
	v.SetDefault("cacheSize", hashfs.DefaultLinksCacheSize)
	v.SetDefault("loglevel", "info")
}

// Load the configuration file of a repository, if any, then environment overrides
func Load(v *viper.Viper, repoDir string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	pth := filepath.Join(repoDir, "config.yaml")
	if _, err := os.Stat(pth); err == nil {
		v.SetConfigFile(pth)
		if err = v.ReadInConfig(); err != nil {
			return nil, status.ErrConfiguration.Detailf("reading %s", pth).Wrap(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, status.ErrConfiguration.Detailf("decoding %s", pth).Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BlockSizeBytes is the chunk size, in bytes
func (c *Config) BlockSizeBytes() (int, error) {
	size, err := units.RAMInBytes(c.BlockSize)
	if err != nil {
		return 0, status.ErrConfiguration.Detailf("blockSize: %q", c.BlockSize).Wrap(err)
	}
	if size <= 0 {
		return 0, status.ErrConfiguration.Detailf("blockSize: must be positive, got %q", c.BlockSize)
	}
	return int(size), nil
}

// Validate the configuration, reporting the first invalid setting
func (c *Config) Validate() error {
	if _, err := c.BlockSizeBytes(); err != nil {
		return err
	}
	if c.PushThreads <= 0 {
		return status.ErrConfiguration.Detailf("pushThreads: must be positive, got %d", c.PushThreads)
	}
	if c.Retry < 0 {
		return status.ErrConfiguration.Detailf("retry: must not be negative, got %d", c.Retry)
	}
	if c.Levels < 0 || c.Levels > hashfs.MaxLevels {
		return status.ErrConfiguration.Detailf("levels: must be between 0 and %d, got %d", hashfs.MaxLevels, c.Levels)
	}
	if c.Window <= 0 {
		return status.ErrConfiguration.Detailf("window: must be positive, got %d", c.Window)
	}
	if c.RateLimit < 0 {
		return status.ErrConfiguration.Detailf("rateLimit: must not be negative, got %g", c.RateLimit)
	}
	if _, err := hashfs.SchemeFor(c.Scheme); err != nil {
		return status.ErrConfiguration.Detailf("scheme").Wrap(err)
	}
	return nil
}

// HashFSOptions yields the block store options for this configuration
func (c *Config) HashFSOptions() ([]hashfs.Option, error) {
	size, err := c.BlockSizeBytes()
	if err != nil {
		return nil, err
	}
	scheme, err := hashfs.SchemeFor(c.Scheme)
	if err != nil {
		return nil, status.ErrConfiguration.Detailf("scheme").Wrap(err)
	}
	return []hashfs.Option{
		hashfs.BlockSize(size),
		hashfs.Levels(c.Levels),
		hashfs.WithScheme(scheme),
		hashfs.LinksCacheSize(c.CacheSize),
	}, nil
}
