package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Wiki     WikiConfig     `mapstructure:"wiki"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

// WikiConfig holds the remote wiki settings
type WikiConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"` // seconds, 0 disables the timeout
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	UserAgent            string `mapstructure:"user_agent"`
	Proxy                string `mapstructure:"proxy"`
}

// StorageConfig holds the local cache layout
type StorageConfig struct {
	DataDir   string `mapstructure:"data_dir"`
	CacheFile string `mapstructure:"cache_file"`
	ImageDir  string `mapstructure:"image_dir"`
}

// DatabaseConfig holds the optional Postgres mirror configuration
type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CachePath is the location of items.json.
func (s StorageConfig) CachePath() string {
	return filepath.Join(s.DataDir, s.CacheFile)
}

// ImagePath is the directory downloaded icons are written to.
func (s StorageConfig) ImagePath() string {
	return filepath.Join(s.DataDir, s.ImageDir)
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Load reads configuration from a YAML file with environment variable overrides.
// An empty path looks for config.yaml in the current directory; a missing
// default file is not an error, the built-in defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	config.Wiki.BaseURL = strings.TrimSuffix(config.Wiki.BaseURL, "/")

	return &config, nil
}

func (c *Config) validate() error {
	if c.Wiki.BaseURL == "" {
		return errors.New("wiki.base_url must not be empty")
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir must not be empty")
	}
	if c.Storage.CacheFile == "" {
		return errors.New("storage.cache_file must not be empty")
	}
	if c.Wiki.Timeout < 0 {
		return fmt.Errorf("wiki.timeout must be >= 0, got %d", c.Wiki.Timeout)
	}
	if c.Wiki.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("wiki.max_requests_per_second must be >= 0, got %d", c.Wiki.MaxRequestsPerSecond)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wiki.base_url", "https://wiki.factorio.com")
	v.SetDefault("wiki.timeout", 0)
	v.SetDefault("wiki.max_requests_per_second", 0)
	v.SetDefault("wiki.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("wiki.proxy", "")

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.cache_file", "items.json")
	v.SetDefault("storage.image_dir", "images")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "factorio")
	v.SetDefault("database.user", "factorio_user")
	v.SetDefault("database.password", "factorio_pass")

	v.SetDefault("log.level", "info")
}
