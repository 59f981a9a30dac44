package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Scrape    ScrapeConfig
	Matching  MatchingConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ScrapeConfig holds source-connector and fetch-orchestration configuration
type ScrapeConfig struct {
	// Sources maps a source name to its scraper-endpoint base URL.
	Sources           map[string]string `mapstructure:"sources"`
	MaxRetries        int               `mapstructure:"max_retries"`
	RetryDelay        time.Duration     `mapstructure:"retry_delay"`
	PerSourceTimeout  time.Duration     `mapstructure:"per_source_timeout"`
	RequestTimeout    time.Duration     `mapstructure:"request_timeout"`
	RequestsPerMinute int               `mapstructure:"requests_per_minute"`
}

// MatchingConfig holds product-matching configuration
type MatchingConfig struct {
	MinMatchScore      float64  `mapstructure:"min_match_score"`
	Brands             []string `mapstructure:"brands"`
	EnableDebugLogging bool     `mapstructure:"debug"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL      string        `mapstructure:"redis_url"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitConfig holds per-client admission control configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute per client IP
	Burst int `mapstructure:"burst"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/compareit/")

	v.SetEnvPrefix("COMPAREIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Scrape defaults
	v.SetDefault("scrape.sources", map[string]string{
		"zepto":      "http://localhost:7101",
		"blinkit":    "http://localhost:7102",
		"swiggymart": "http://localhost:7103",
	})
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.retry_delay", "1s")
	v.SetDefault("scrape.per_source_timeout", "30s")
	v.SetDefault("scrape.request_timeout", "45s")
	v.SetDefault("scrape.requests_per_minute", 60)

	// Matching defaults
	v.SetDefault("matching.min_match_score", 0.8)
	v.SetDefault("matching.brands", []string{
		"tata", "amul", "fortune", "maggi", "colgate", "surf", "red label", "aashirvaad",
	})
	v.SetDefault("matching.debug", false)

	// Cache defaults; redis_url registers the key so env vars can fill it
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.sweep_interval", "10m")

	// Rate limit defaults: original service allowed 100 requests / 15 min per IP
	v.SetDefault("ratelimit.per_ip", 7)
	v.SetDefault("ratelimit.burst", 10)
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Scrape.Sources) == 0 {
		return fmt.Errorf("at least one scrape source is required")
	}

	if config.Matching.MinMatchScore <= 0 || config.Matching.MinMatchScore > 1 {
		return fmt.Errorf("matching.min_match_score must be in (0,1], got: %v", config.Matching.MinMatchScore)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when cache type is 'redis'")
	}

	return nil
}
