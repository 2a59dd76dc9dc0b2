package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// Content settings
	ContentOrigin string
	NewsPath      string
	IndexPath     string
	DBPath        string

	// Server settings
	ServerHost string
	ServerPort int
	APIKey     string

	// Browsing settings
	PageSize        int
	RefreshInterval time.Duration
	SearchDebounce  time.Duration
	RequestTimeout  time.Duration

	ContactRatePerMinute int

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration with hardcoded defaults,
// overridden by PORTAL_* environment variables where set.
func DefaultConfig() *Config {
	logLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		ContentOrigin:        GetEnvString(EnvKey("CONTENT_ORIGIN"), DefaultContentOrigin),
		NewsPath:             GetEnvString(EnvKey("NEWS_PATH"), DefaultNewsPath),
		IndexPath:            GetEnvString(EnvKey("INDEX_PATH"), DefaultIndexPath),
		DBPath:               GetEnvString(EnvKey("DB_PATH"), DefaultDBPath),
		ServerHost:           GetEnvString(EnvKey("HOST"), DefaultServerHost),
		ServerPort:           GetEnvInt(EnvKey("PORT"), DefaultServerPort),
		APIKey:               GetEnvString(EnvKey("API_KEY"), ""),
		PageSize:             GetEnvInt(EnvKey("PAGE_SIZE"), DefaultPageSize),
		RefreshInterval:      GetEnvSeconds(EnvKey("REFRESH_INTERVAL"), DefaultRefreshInterval),
		SearchDebounce:       time.Duration(GetEnvInt(EnvKey("SEARCH_DEBOUNCE_MS"), DefaultSearchDebounce)) * time.Millisecond,
		RequestTimeout:       GetEnvSeconds(EnvKey("REQUEST_TIMEOUT"), DefaultRequestTimeout),
		ContactRatePerMinute: GetEnvInt(EnvKey("CONTACT_RATE"), DefaultContactRatePerMinute),
		LogLevel:             GetEnvLogLevel(EnvKey("LOG_LEVEL"), logLevel),
	}
}

// Validate reports settings that would leave the service unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ContentOrigin) == "" {
		return fmt.Errorf("content origin must not be empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh interval cannot be negative")
	}
	if c.SearchDebounce < 0 {
		return fmt.Errorf("search debounce cannot be negative")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d", c.ServerPort)
	}
	return nil
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// EnvKey prefixes a setting name with the application's environment namespace.
func EnvKey(name string) string {
	return envPrefix + name
}
