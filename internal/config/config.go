// Package config handles application configuration using Viper.
// Settings merge in priority order: defaults, then an optional YAML file,
// then PLACEPIX_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. Nested structs organize related settings.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	// RecordsPath is the CSV place table being assigned images.
	RecordsPath string `mapstructure:"records_path"`
	// ImageDir is where downloaded photos are written.
	ImageDir string `mapstructure:"image_dir"`
	// HistoryPath is the SQLite database holding the assignment audit log.
	HistoryPath string `mapstructure:"history_path"`
}

// ProvidersConfig holds one credential per photo-search service.
// Pixabay ships with a non-secret fallback key so the tool works out of the
// box; unsplash and pexels fail closed when their key is absent.
type ProvidersConfig struct {
	PixabayKey  string `mapstructure:"pixabay_key"`
	UnsplashKey string `mapstructure:"unsplash_key"`
	PexelsKey   string `mapstructure:"pexels_key"`
}

// AuthConfig lists operator API keys. Empty means the API is open; this is
// a single-operator tool and auth is opt-in.
type AuthConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// defaultPixabayKey is a rate-limited public demo key, not a secret.
const defaultPixabayKey = "32930666-57c10a488d7ad48cd7f09643a"

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.records_path", "./data/records.csv")
	v.SetDefault("storage.image_dir", "./data/images")
	v.SetDefault("storage.history_path", "./data/placepix.db")
	v.SetDefault("providers.pixabay_key", defaultPixabayKey)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("log.level", "info")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// A missing config file is fine, defaults plus env are enough.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// PLACEPIX_ prefix + nested keys: PLACEPIX_PROVIDERS_PEXELS_KEY=... → providers.pexels_key
	v.SetEnvPrefix("PLACEPIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Key returns the credential for a named provider, empty when unset.
func (p ProvidersConfig) Key(name string) string {
	switch name {
	case "pixabay":
		return p.PixabayKey
	case "unsplash":
		return p.UnsplashKey
	case "pexels":
		return p.PexelsKey
	default:
		return ""
	}
}
