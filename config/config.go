package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Advisor   AdvisorConfig
	Dashboard DashboardConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AdvisorConfig holds restock advisor API configuration
type AdvisorConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	QuotaPerMinute int           `mapstructure:"quota_per_minute"`
}

// DashboardConfig holds generation cycle configuration
type DashboardConfig struct {
	Debounce            time.Duration `mapstructure:"debounce"`
	Concurrency         int           `mapstructure:"concurrency"`
	ItemTimeout         time.Duration `mapstructure:"item_timeout"`
	NotificationHistory int           `mapstructure:"notification_history"`
}

// CacheConfig holds recommendation cache configuration
type CacheConfig struct {
	Type string        `mapstructure:"type"` // "memory" or "file"
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Populate the environment from a local .env file first, if present
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shelfwatch/")

	// Environment variable settings
	v.SetEnvPrefix("SHELFWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
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
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	// Advisor defaults
	v.SetDefault("advisor.base_url", "https://api.shelfwatch.io/advisor")
	v.SetDefault("advisor.request_timeout", "30s")
	v.SetDefault("advisor.quota_per_minute", 120)

	// Dashboard defaults
	v.SetDefault("dashboard.debounce", "1s")
	v.SetDefault("dashboard.concurrency", 3)
	v.SetDefault("dashboard.item_timeout", "10s")
	v.SetDefault("dashboard.notification_history", 50)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "30m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Advisor.APIKey == "" {
		return fmt.Errorf("advisor API key is required (set SHELFWATCH_ADVISOR_API_KEY)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "file" {
		return fmt.Errorf("cache type must be 'memory' or 'file', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "file" && config.Cache.Path == "" {
		return fmt.Errorf("cache path is required when cache type is 'file'")
	}

	if config.Dashboard.Concurrency < 1 {
		return fmt.Errorf("dashboard concurrency must be at least 1, got: %d", config.Dashboard.Concurrency)
	}

	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file in the working
// directory into the process environment. Missing files are fine; existing
// environment variables are never overridden.
func loadEnvFile() error {
	file, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
