package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Matching  MatchingConfig  `koanf:"matching"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`

	// Version is injected at build time, never read from config sources
	Version string `koanf:"-"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	// Environment is development or production
	Environment string `koanf:"environment"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataConfig locates the two datasets. Source is "csv" or "sqlite".
type DataConfig struct {
	Source         string `koanf:"source"`
	Dir            string `koanf:"dir"`
	ByproductsFile string `koanf:"byproducts_file"`
	CompaniesFile  string `koanf:"companies_file"`
	SQLitePath     string `koanf:"sqlite_path"`
}

type MatchingConfig struct {
	// CaseInsensitiveDomains compares industrial classifications ignoring case.
	// Off by default: only crop and district are case-folded.
	CaseInsensitiveDomains bool `koanf:"case_insensitive_domains"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// AllowsAnyOrigin reports whether the origin list contains the wildcard
func (c CORSConfig) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			return true
		}
	}
	return false
}

type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Validate checks the configuration for values the server cannot run with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}

	switch c.Data.Source {
	case "csv":
		if c.Data.ByproductsFile == "" || c.Data.CompaniesFile == "" {
			return fmt.Errorf("data.byproducts_file and data.companies_file are required for the csv source")
		}
	case "sqlite":
		if c.Data.SQLitePath == "" {
			return fmt.Errorf("data.sqlite_path is required for the sqlite source")
		}
	default:
		return fmt.Errorf("data.source must be csv or sqlite, got %q", c.Data.Source)
	}

	// Browsers refuse a wildcard origin on credentialed responses.
	if c.Server.Environment == "production" && c.CORS.AllowsAnyOrigin() && c.CORS.AllowCredentials {
		return fmt.Errorf("cors.allowed_origins must list explicit origins when credentials are allowed in production")
	}

	if c.RateLimit.Enabled && (c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0) {
		return fmt.Errorf("rate_limit.requests and rate_limit.window must be positive when rate limiting is enabled")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}
