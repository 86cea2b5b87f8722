package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Logging     LoggingConfig    `toml:"logging"`
	Storage     StorageConfig    `toml:"storage"`
	PlacesAPI   PlacesAPIConfig  `toml:"places_api"`
	Search      SearchConfig     `toml:"search"`
	Cache       CacheConfig      `toml:"cache"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration. The cache stores
// default to an in-memory database; a path is only used when in_memory is
// disabled.
type BadgerConfig struct {
	Path     string `toml:"path"`
	InMemory bool   `toml:"in_memory"`
}

// PlacesAPIConfig contains Google Places API configuration
type PlacesAPIConfig struct {
	APIKey           string `toml:"api_key"`            // Places API key; GOOGLE_MAPS_API_KEY env fallback
	BaseURL          string `toml:"base_url"`           // Override for tests; default Google endpoint
	RequestTimeout   string `toml:"request_timeout"`    // HTTP timeout per provider call, e.g. "8s"
	PageTokenDelay   string `toml:"page_token_delay"`   // Minimum wait before presenting a continuation token
	WebsiteCacheSize int    `toml:"website_cache_size"` // LRU bound for the per-place website cache
}

// SearchConfig contains fan-out tuning for search orchestration
type SearchConfig struct {
	DetailConcurrency   int    `toml:"detail_concurrency"`   // Concurrent website lookups per page
	DetailBudget        string `toml:"detail_budget"`        // Wall-clock budget for one enrichment batch
	LocationConcurrency int    `toml:"location_concurrency"` // Concurrent per-location searches
	LocationTimeout     string `toml:"location_timeout"`     // Timeout per location in a multi search
	MaxPages            int    `toml:"max_pages"`            // Page cap for deep search
	MaxRecords          int    `toml:"max_records"`          // Record cap for deep search
}

// CacheConfig contains request-cache behaviour
type CacheConfig struct {
	TTL           string `toml:"ttl"`            // Entry time-to-live from insertion
	Capacity      int    `toml:"capacity"`       // Entry bound; oldest evicted at capacity
	SweepSchedule string `toml:"sweep_schedule"` // Cron spec for the expired-entry sweep
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:     "./data",
				InMemory: true,
			},
		},
		PlacesAPI: PlacesAPIConfig{
			APIKey:           "", // User must provide API key in config, env or .env
			RequestTimeout:   "8s",
			PageTokenDelay:   "2s", // Provider rejects continuation tokens presented too soon
			WebsiteCacheSize: 500,
		},
		Search: SearchConfig{
			DetailConcurrency:   5,
			DetailBudget:        "45s",
			LocationConcurrency: 3,
			LocationTimeout:     "90s",
			MaxPages:            3,
			MaxRecords:          60,
		},
		Cache: CacheConfig{
			TTL:           "3600s",
			Capacity:      1024,
			SweepSchedule: "@every 10m",
		},
	}
}

// LoadFromFiles loads configuration from files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("INVENIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("INVENIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("INVENIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("INVENIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// Storage configuration
	if badgerPath := os.Getenv("INVENIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
		config.Storage.Badger.InMemory = false
	}

	// Places API configuration. INVENIO_PLACES_API_KEY takes precedence;
	// GOOGLE_MAPS_API_KEY is accepted for compatibility with existing
	// deployments and .env files.
	if key := os.Getenv("INVENIO_PLACES_API_KEY"); key != "" {
		config.PlacesAPI.APIKey = key
	} else if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" && config.PlacesAPI.APIKey == "" {
		config.PlacesAPI.APIKey = key
	}
	if timeout := os.Getenv("INVENIO_PLACES_REQUEST_TIMEOUT"); timeout != "" {
		config.PlacesAPI.RequestTimeout = timeout
	}

	// Search configuration
	if concurrency := os.Getenv("INVENIO_SEARCH_DETAIL_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Search.DetailConcurrency = c
		}
	}
	if concurrency := os.Getenv("INVENIO_SEARCH_LOCATION_CONCURRENCY"); concurrency != "" {
		if c, err := strconv.Atoi(concurrency); err == nil {
			config.Search.LocationConcurrency = c
		}
	}

	// Cache configuration
	if ttl := os.Getenv("INVENIO_CACHE_TTL"); ttl != "" {
		config.Cache.TTL = ttl
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseDurationOr parses a duration string, falling back to def when the
// value is empty or malformed.
func ParseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
