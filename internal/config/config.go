// Package config loads truthlens settings from a YAML file, .env files and the
// process environment. Environment always wins over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"truthlens/internal/logger"
)

// Config is the root configuration.
type Config struct {
	Providers ProvidersConfig `yaml:"providers"`
	Engine    EngineConfig    `yaml:"engine"`
	Cache     CacheConfig     `yaml:"cache"`
	Server    ServerConfig    `yaml:"server"`
	Logging   logger.Config   `yaml:"logging"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
}

// ProvidersConfig holds credentials and per-provider switches.
type ProvidersConfig struct {
	Language string `yaml:"language" env:"NEWS_LANGUAGE"`

	NewsAPI  KeyedProvider `yaml:"newsapi"`
	GNews    KeyedProvider `yaml:"gnews"`
	NewsData KeyedProvider `yaml:"newsdata"`
	Guardian KeyedProvider `yaml:"guardian"`
	Bing     KeyedProvider `yaml:"bing"`

	GoogleNews GoogleNewsConfig `yaml:"google_news"`
	Feeds      FeedsConfig      `yaml:"feeds"`

	// RequestsPerSecond and Burst apply to every provider's limiter.
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"PROVIDER_RPS"`
	Burst             int     `yaml:"burst" env:"PROVIDER_BURST"`
}

// KeyedProvider is a provider that needs an API key.
type KeyedProvider struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// GoogleNewsConfig configures the keyless Google News RSS search.
type GoogleNewsConfig struct {
	Enabled bool   `yaml:"enabled" env:"GOOGLE_NEWS_ENABLED"`
	BaseURL string `yaml:"base_url"`
}

// FeedsConfig lists curated publisher feeds scanned locally for matches.
type FeedsConfig struct {
	Enabled bool     `yaml:"enabled" env:"FEEDS_ENABLED"`
	URLs    []string `yaml:"urls"`
}

// EngineConfig tunes the corroboration engine.
type EngineConfig struct {
	CallTimeout        time.Duration `yaml:"call_timeout" env:"ENGINE_CALL_TIMEOUT"`
	TargetCount        int           `yaml:"target_count" env:"ENGINE_TARGET_COUNT"`
	DefaultResults     int           `yaml:"default_results" env:"ENGINE_DEFAULT_RESULTS"`
	MinRelevance       float64       `yaml:"min_relevance" env:"ENGINE_MIN_RELEVANCE"`
	DuplicateThreshold float64       `yaml:"duplicate_threshold" env:"ENGINE_DUPLICATE_THRESHOLD"`
	PoolSize           int           `yaml:"pool_size" env:"ENGINE_POOL_SIZE"`
}

// CacheConfig configures the optional Redis result cache. An empty address
// disables caching.
type CacheConfig struct {
	Address  string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	TTL      time.Duration `yaml:"ttl" env:"CACHE_TTL"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Address string `yaml:"address" env:"SERVER_ADDRESS"`
}

// AnalysisConfig configures where analysis records go.
type AnalysisConfig struct {
	LogPath string `yaml:"log_path" env:"ANALYSIS_LOG_PATH"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.Providers.GoogleNews.Enabled = true
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Providers.Language == "" {
		c.Providers.Language = "en"
	}
	if c.Providers.RequestsPerSecond <= 0 {
		c.Providers.RequestsPerSecond = 2
	}
	if c.Providers.Burst <= 0 {
		c.Providers.Burst = 2
	}
	if c.Engine.CallTimeout <= 0 {
		c.Engine.CallTimeout = 15 * time.Second
	}
	if c.Engine.TargetCount <= 0 {
		c.Engine.TargetCount = 6
	}
	if c.Engine.DefaultResults <= 0 {
		c.Engine.DefaultResults = 5
	}
	if c.Engine.MinRelevance <= 0 {
		c.Engine.MinRelevance = 0.1
	}
	if c.Engine.DuplicateThreshold <= 0 {
		c.Engine.DuplicateThreshold = 0.8
	}
	if c.Engine.PoolSize <= 0 {
		c.Engine.PoolSize = 16
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 30 * time.Minute
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Analysis.LogPath == "" {
		c.Analysis.LogPath = "analysis.log"
	}
}

// Load reads path (if it exists), then .env files, then the environment.
// Provider credentials are read from their conventional variable names.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	cfg := &Config{}
	cfg.Providers.GoogleNews.Enabled = true

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults and environment only
		case err != nil:
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyCredentials(&cfg.Providers)
	cfg.SetDefaults()
	return cfg, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// godotenv never overrides variables that are already set, so the first file wins.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env.local: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func applyCredentials(p *ProvidersConfig) {
	set := func(dst *string, name string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}
	set(&p.NewsAPI.APIKey, "NEWSAPI_KEY")
	set(&p.GNews.APIKey, "GNEWS_API_KEY")
	set(&p.NewsData.APIKey, "NEWSDATA_API_KEY")
	set(&p.Guardian.APIKey, "GUARDIAN_API_KEY")
	set(&p.Bing.APIKey, "BING_API_KEY")
}
