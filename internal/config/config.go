// Package config provides centralized configuration management for the table
// hosts. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"time"

	"github.com/JonMunkholm/tablesorter/internal/view"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Table    TableConfig
	Source   SourceConfig
	Session  SessionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 300)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// MutationLimit is requests per minute for endpoints that change table
	// data: insert, remove and reload (default: 30)
	MutationLimit int `env:"RATE_LIMIT_MUTATIONS" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey protects the JSON API with X-API-Key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// File redirects logs to a file; the terminal viewer always needs one
	// because stdout belongs to the UI
	File string `env:"LOG_FILE"`
}

// TableConfig holds defaults applied to every table a host creates.
type TableConfig struct {
	// PageSize is the initial rows per page (default: 10)
	PageSize int `env:"TABLE_PAGE_SIZE" default:"10"`

	// ThrottleDelay is the render window for keystroke-driven search and
	// filter input (default: 300ms)
	ThrottleDelay time.Duration `env:"TABLE_THROTTLE_DELAY" default:"300ms"`

	// Locale selects the message catalogue: es or en (default: es)
	Locale string `env:"TABLE_LOCALE" default:"es"`

	// ShowSearch shows the global search box (default: true)
	ShowSearch bool `env:"TABLE_SHOW_SEARCH" default:"true"`

	// SortBy is the initial sort column (default: none)
	SortBy string `env:"TABLE_SORT_BY"`

	// SortOrder is the initial sort direction: asc or desc (default: asc)
	SortOrder string `env:"TABLE_SORT_ORDER" default:"asc"`
}

// SourceConfig selects where table data is loaded from at startup.
// With neither Path nor DatabaseURL set, the built-in demo data is used.
type SourceConfig struct {
	// Path is a CSV or JSON file to load
	Path string `env:"SOURCE_PATH"`

	// Format overrides extension-based detection: csv or json
	Format string `env:"SOURCE_FORMAT"`

	// DatabaseURL is a PostgreSQL connection string
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// DBTable is the table to snapshot, optionally schema-qualified
	DBTable string `env:"SOURCE_DB_TABLE"`

	// MaxRows caps the database snapshot (default: 10000)
	MaxRows int `env:"SOURCE_MAX_ROWS" default:"10000"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// LoadTimeout bounds a single load from the source (default: 30s)
	LoadTimeout time.Duration `env:"SOURCE_LOAD_TIMEOUT" default:"30s"`
}

// UsesDatabase reports whether data comes from PostgreSQL.
func (c *SourceConfig) UsesDatabase() bool {
	return c.DatabaseURL != "" && c.DBTable != ""
}

// SessionConfig holds settings for per-viewer table sessions.
type SessionConfig struct {
	// TTL is how long an idle session survives (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// MaxSessions caps concurrent sessions; the least recently used is
	// evicted when full (default: 1000)
	MaxSessions int `env:"SESSION_MAX" default:"1000"`

	// SweepInterval is how often expired sessions are removed (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Apply overlays the table defaults onto options loaded from a source.
// An empty SortBy keeps the source's own sort.
func (c TableConfig) Apply(opts view.Options) view.Options {
	opts.RowsPerPage = c.PageSize
	opts.Locale = c.Locale
	opts.ShowSearch = c.ShowSearch
	if c.SortBy != "" {
		opts.SortBy = c.SortBy
		opts.SortOrder = view.ParseSortOrder(c.SortOrder)
	}
	return opts
}
