// Package config loads service configuration from a JSON config file,
// a .env file, and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	OpenAI   OpenAIConfig
	Images   ImagesConfig
	Shopping ShoppingConfig
	Storage  StorageConfig
	CORS     CORSConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host          string
	Port          int
	PublicBaseURL string
}

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

type ImagesConfig struct {
	PexelsAPIKey      string
	UnsplashAccessKey string
	PerIdea           int
	CacheTTL          string
}

type ShoppingConfig struct {
	AffiliateTag string
}

type StorageConfig struct {
	DataDir   string
	ResultTTL string
}

type CORSConfig struct {
	// Origins is a comma-separated allowlist.
	Origins string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5000,
		},
		OpenAI: OpenAIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   1500,
			Temperature: 0.7,
		},
		Images: ImagesConfig{
			PerIdea:  3,
			CacheTTL: "15m",
		},
		Shopping: ShoppingConfig{
			AffiliateTag: "rubysgifts-21",
		},
		Storage: StorageConfig{
			DataDir:   defaultDataDir(),
			ResultTTL: "720h",
		},
		CORS: CORSConfig{
			Origins: "http://localhost:3000,http://localhost:5000,http://127.0.0.1:5000",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/giftd/config.json, a .env file in the working directory,
// and environment variables (GIFTD_*). Environment variables win.
//
// Secrets are never stored in the config file; they come from the
// environment only. An absent OpenAI key is not an error so the server can
// start and report its state through /health, but generation will fail
// until one is provided.
func Load() (Config, error) {
	// A .env file is a convenience for development; its values become plain
	// environment variables and flow through the normal override path.
	godotenv.Load()

	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	applySecretFallbacks(&cfg)

	if _, err := time.ParseDuration(cfg.Storage.ResultTTL); err != nil {
		return Config{}, fmt.Errorf("invalid storage.result_ttl %q: %w", cfg.Storage.ResultTTL, err)
	}
	if _, err := time.ParseDuration(cfg.Images.CacheTTL); err != nil {
		return Config{}, fmt.Errorf("invalid images.cache_ttl %q: %w", cfg.Images.CacheTTL, err)
	}

	if cfg.OpenAI.APIKey == "" {
		fmt.Fprintln(os.Stderr, "[WARN] no OpenAI API key configured; set GIFTD_OPENAI_API_KEY or OPENAI_API_KEY to enable gift generation.")
	}
	return cfg, nil
}

// applySecretFallbacks honors the conventional unprefixed secret names when
// the GIFTD_-prefixed ones are absent.
func applySecretFallbacks(cfg *Config) {
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Images.PexelsAPIKey == "" {
		cfg.Images.PexelsAPIKey = os.Getenv("PEXELS_API_KEY")
	}
	if cfg.Images.UnsplashAccessKey == "" {
		cfg.Images.UnsplashAccessKey = os.Getenv("UNSPLASH_ACCESS_KEY")
	}
}

// ResultTTL returns the parsed result TTL. Load validated the format.
func (c Config) ResultTTL() time.Duration {
	d, _ := time.ParseDuration(c.Storage.ResultTTL)
	return d
}

// ImageCacheTTL returns the parsed image cache TTL.
func (c Config) ImageCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Images.CacheTTL)
	return d
}

// CORSOrigins returns the origin allowlist as a slice.
func (c Config) CORSOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORS.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// BaseURL returns the public base URL, falling back to the listen address.
func (c Config) BaseURL() string {
	if c.Server.PublicBaseURL != "" {
		return strings.TrimRight(c.Server.PublicBaseURL, "/")
	}
	host := c.Server.Host
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.Server.Port)
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "giftd-data"
		}
	}
	return filepath.Join(dir, "giftd")
}
