// Package common provides shared utilities for the basket server
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the basket server
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Quotes      QuotesConfig    `toml:"quotes"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Display     DisplayConfig   `toml:"display"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the basket store.
type StorageConfig struct {
	Backend   string `toml:"backend"` // "badger" (embedded) or "surrealdb"
	Path      string `toml:"path"`    // badger data directory
	Address   string `toml:"address"` // surrealdb websocket address
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
}

// Location returns a human readable description of where baskets are stored.
func (c *StorageConfig) Location() string {
	if c.Backend == "surrealdb" {
		return fmt.Sprintf("surrealdb %s (%s/%s)", c.Address, c.Namespace, c.Database)
	}
	return "badger " + c.Path
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD EODHDConfig `toml:"eodhd"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	Exchange  string `toml:"exchange"` // suffix appended to bare symbols, e.g. "NSE"
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// QuotesConfig controls the last-traded-price cache.
type QuotesConfig struct {
	CacheTTL string `toml:"cache_ttl"`
}

// GetCacheTTL parses the cache TTL, defaulting to one minute. Zero disables caching.
func (c *QuotesConfig) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d < 0 {
		return time.Minute
	}
	return d
}

// SchedulerConfig controls the background price refresh.
type SchedulerConfig struct {
	Enabled      bool   `toml:"enabled"`
	PriceRefresh string `toml:"price_refresh"` // cron spec, seconds field optional
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	CurrencySymbol string `toml:"currency_symbol"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`  // "json" or "text"
	Outputs  []string `toml:"outputs"` // "console", "file"
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend:   "badger",
			Path:      "data/baskets",
			Address:   "ws://localhost:8000/rpc",
			Namespace: "basket",
			Database:  "basket",
			Username:  "root",
			Password:  "root",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
				Exchange:  "NSE",
			},
		},
		Quotes: QuotesConfig{
			CacheTTL: "1m",
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			PriceRefresh: "@every 15m",
		},
		Display: DisplayConfig{
			CurrencySymbol: "₹",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Outputs:  []string{"console"},
			FilePath: "./logs/basket.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// A .env file in the working directory is loaded first; variables already
// set in the environment take precedence over it.
func LoadConfig(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BASKET_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("BASKET_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("BASKET_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("BASKET_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage
	if v := os.Getenv("BASKET_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}
	if v := os.Getenv("BASKET_DATA_PATH"); v != "" {
		config.Storage.Path = v
	}
	if v := os.Getenv("BASKET_STORAGE_ADDRESS"); v != "" {
		config.Storage.Address = v
	}
	if v := os.Getenv("BASKET_STORAGE_NAMESPACE"); v != "" {
		config.Storage.Namespace = v
	}
	if v := os.Getenv("BASKET_STORAGE_DATABASE"); v != "" {
		config.Storage.Database = v
	}
	if v := os.Getenv("BASKET_STORAGE_USERNAME"); v != "" {
		config.Storage.Username = v
	}
	if v := os.Getenv("BASKET_STORAGE_PASSWORD"); v != "" {
		config.Storage.Password = v
	}

	// EODHD key: the provider's own variable name wins
	for _, name := range []string{"EODHD_API_KEY", "BASKET_EODHD_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			config.Clients.EODHD.APIKey = v
			break
		}
	}
	if v := os.Getenv("BASKET_EODHD_EXCHANGE"); v != "" {
		config.Clients.EODHD.Exchange = v
	}

	if v := os.Getenv("BASKET_QUOTE_CACHE_TTL"); v != "" {
		config.Quotes.CacheTTL = v
	}

	if v := os.Getenv("BASKET_SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if v := os.Getenv("BASKET_PRICE_REFRESH"); v != "" {
		config.Scheduler.PriceRefresh = v
	}

	if v := os.Getenv("BASKET_CURRENCY_SYMBOL"); v != "" {
		config.Display.CurrencySymbol = v
	}
}

// ValidateRequired returns the names of required settings that are missing.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if strings.TrimSpace(c.Clients.EODHD.APIKey) == "" {
		missing = append(missing, "clients.eodhd.api_key")
	}
	switch c.Storage.Backend {
	case "badger", "":
		if strings.TrimSpace(c.Storage.Path) == "" {
			missing = append(missing, "storage.path")
		}
	case "surrealdb":
		if strings.TrimSpace(c.Storage.Address) == "" {
			missing = append(missing, "storage.address")
		}
	default:
		missing = append(missing, "storage.backend (badger|surrealdb)")
	}
	return missing
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
