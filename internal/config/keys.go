package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.host", typ: kString, env: "GIFTD_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "GIFTD_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.public_base_url", typ: kString, env: "GIFTD_SERVER_PUBLIC_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Server.PublicBaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.PublicBaseURL },
	},
	{
		key: "openai.api_key", typ: kString, env: "GIFTD_OPENAI_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.OpenAI.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.APIKey },
	},
	{
		key: "openai.base_url", typ: kString, env: "GIFTD_OPENAI_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.BaseURL },
	},
	{
		key: "openai.model", typ: kString, env: "GIFTD_OPENAI_MODEL",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.OpenAI.Model },
	},
	{
		key: "openai.max_tokens", typ: kInt, env: "GIFTD_OPENAI_MAX_TOKENS",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.MaxTokens = v.(int) },
		extract: func(cfg Config) any { return cfg.OpenAI.MaxTokens },
	},
	{
		key: "openai.temperature", typ: kFloat, env: "GIFTD_OPENAI_TEMPERATURE",
		apply:   func(cfg *Config, v any) { cfg.OpenAI.Temperature = v.(float64) },
		extract: func(cfg Config) any { return cfg.OpenAI.Temperature },
	},
	{
		key: "images.pexels_api_key", typ: kString, env: "GIFTD_PEXELS_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Images.PexelsAPIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Images.PexelsAPIKey },
	},
	{
		key: "images.unsplash_access_key", typ: kString, env: "GIFTD_UNSPLASH_ACCESS_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Images.UnsplashAccessKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Images.UnsplashAccessKey },
	},
	{
		key: "images.per_idea", typ: kInt, env: "GIFTD_IMAGES_PER_IDEA",
		apply:   func(cfg *Config, v any) { cfg.Images.PerIdea = v.(int) },
		extract: func(cfg Config) any { return cfg.Images.PerIdea },
	},
	{
		key: "images.cache_ttl", typ: kString, env: "GIFTD_IMAGES_CACHE_TTL",
		apply:   func(cfg *Config, v any) { cfg.Images.CacheTTL = v.(string) },
		extract: func(cfg Config) any { return cfg.Images.CacheTTL },
	},
	{
		key: "shopping.affiliate_tag", typ: kString, env: "GIFTD_SHOPPING_AFFILIATE_TAG",
		apply:   func(cfg *Config, v any) { cfg.Shopping.AffiliateTag = v.(string) },
		extract: func(cfg Config) any { return cfg.Shopping.AffiliateTag },
	},
	{
		key: "storage.data_dir", typ: kString, env: "GIFTD_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "storage.result_ttl", typ: kString, env: "GIFTD_STORAGE_RESULT_TTL",
		apply:   func(cfg *Config, v any) { cfg.Storage.ResultTTL = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.ResultTTL },
	},
	{
		key: "cors.origins", typ: kString, env: "GIFTD_CORS_ORIGINS",
		apply:   func(cfg *Config, v any) { cfg.CORS.Origins = v.(string) },
		extract: func(cfg Config) any { return cfg.CORS.Origins },
	},
	{
		key: "log.level", typ: kString, env: "GIFTD_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					s.apply(cfg, f)
				} else {
					fmt.Fprintf(os.Stderr, "[WARN] could not parse float from config key %s=%q: %v. Using default value.\n", s.key, v, err)
				}
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
