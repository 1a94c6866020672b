package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
	Recommend RecommendConfig `mapstructure:"recommend"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	TrustedProxies []string `mapstructure:"trusted_proxies"` // empty trusts no proxy headers
}

// CatalogConfig holds product catalog store configuration
type CatalogConfig struct {
	Driver          string        `mapstructure:"driver"` // "postgres" or "sqlite3"
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	ImageBaseURL    string        `mapstructure:"image_base_url"`
	ProductBaseURL  string        `mapstructure:"product_base_url"`
}

// LLMConfig holds text-generation service configuration
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, claude, gemini, ollama or none
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	PromptsFile string        `mapstructure:"prompts_file"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory", "redis" or "none"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration in requests per minute
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	LLM   int `mapstructure:"llm"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// RecommendConfig holds recommendation pipeline configuration
type RecommendConfig struct {
	DefaultLimit        int  `mapstructure:"default_limit"`
	MaxLimit            int  `mapstructure:"max_limit"`
	CandidateMultiplier int  `mapstructure:"candidate_multiplier"`
	EnableDebugLogging  bool `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from a .env file, environment variables and a
// YAML config file. An empty configFile searches the default locations.
func Load(configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/outfitlens/")
	}

	// OUTFITLENS_CATALOG_DSN maps to catalog.dsn
	v.SetEnvPrefix("OUTFITLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
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

// loadEnvFile loads .env from the working directory if present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values.
// Every key is registered so environment variables can override it.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*", "http://localhost:3000"})
	v.SetDefault("server.trusted_proxies", []string{})

	// Catalog defaults
	v.SetDefault("catalog.driver", "postgres")
	v.SetDefault("catalog.dsn", "")
	v.SetDefault("catalog.max_open_conns", 10)
	v.SetDefault("catalog.max_idle_conns", 5)
	v.SetDefault("catalog.conn_max_lifetime", "30m")
	v.SetDefault("catalog.query_timeout", "3s")
	v.SetDefault("catalog.image_base_url", "")
	v.SetDefault("catalog.product_base_url", "")

	// LLM defaults
	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", "5s")
	v.SetDefault("llm.max_attempts", 2)
	v.SetDefault("llm.prompts_file", "")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 60)
	v.SetDefault("ratelimit.llm", 120)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Recommendation defaults
	v.SetDefault("recommend.default_limit", 3)
	v.SetDefault("recommend.max_limit", 10)
	v.SetDefault("recommend.candidate_multiplier", 3)
	v.SetDefault("recommend.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Driver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("catalog driver must be 'postgres' or 'sqlite3', got: %s", config.Catalog.Driver)
	}
	if config.Catalog.DSN == "" {
		return fmt.Errorf("catalog DSN is required (set OUTFITLENS_CATALOG_DSN)")
	}

	switch config.LLM.Provider {
	case "none", "ollama":
	case "openai", "claude", "gemini":
		if config.LLM.APIKey == "" {
			return fmt.Errorf("LLM API key is required for provider %s (set OUTFITLENS_LLM_API_KEY)", config.LLM.Provider)
		}
	default:
		return fmt.Errorf("llm provider must be one of openai, claude, gemini, ollama, none, got: %s", config.LLM.Provider)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" && config.Cache.Type != "none" {
		return fmt.Errorf("cache type must be 'memory', 'redis' or 'none', got: %s", config.Cache.Type)
	}
	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Log.Format != "" && config.Log.Format != "console" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", config.Log.Format)
	}

	r := config.Recommend
	if r.DefaultLimit <= 0 || r.MaxLimit <= 0 || r.CandidateMultiplier <= 0 {
		return fmt.Errorf("recommend limits and candidate multiplier must be positive")
	}
	if r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("recommend default limit %d exceeds max limit %d", r.DefaultLimit, r.MaxLimit)
	}

	return nil
}
