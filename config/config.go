package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and session configuration
//   - http.go: HTTP server configuration
//   - redis.go: Redis and cache configuration
//   - upstream.go: Upstream marketplace API configuration
type AppConfig struct {
	// IsDev controls development mode behavior (mock auth defaults, logging).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Redis and cache configuration
	Redis RedisConfig `envPrefix:"REDIS_"`
	Cache CacheConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Upstream marketplace API configuration
	Upstream UpstreamConfig `envPrefix:"UPSTREAM_"`

	// Service mode configuration
	Services string `env:"SERVICES" envDefault:"http,session-reaper"`

	// Session reaper configuration
	SessionReaper SessionReaperConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Auth.Sanitize()
	c.Upstream.Sanitize()
	c.SessionReaper.Sanitize()

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsSessionReaperEnabled returns true if the session reaper service is enabled.
func (c *AppConfig) IsSessionReaperEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeSessionReaper]
}
