package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeUpstream exchanges credentials against the upstream identity endpoint.
	AuthModeUpstream AuthMode = "upstream"
	// AuthModeMock uses a config-driven local identity provider (development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "upstream", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: upstream, mock)", v)
	}
}

// DevAuthConfig controls the mock identity provider.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID   string `env:"USER_ID"   envDefault:"dev-user"`
	Email    string `env:"EMAIL"     envDefault:"dev@example.com"`
	FullName string `env:"FULL_NAME" envDefault:"Dev Admin"`
	Password string `env:"PASSWORD"  envDefault:"changeme"`
	Role     string `env:"ROLE"      envDefault:"SUPER_ADMIN"`

	// SigningKey signs locally minted HS256 token pairs.
	SigningKey string `env:"SIGNING_KEY" envDefault:"dev-only-signing-key"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"upstream"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// SessionTTL bounds the server-side session record (refresh horizon).
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"168h"`

	// FallbackAccessTTL is used when the access token expiry claim
	// cannot be decoded.
	FallbackAccessTTL time.Duration `env:"AUTH_FALLBACK_ACCESS_TTL" envDefault:"1h"`

	// RefreshTimeout bounds a single token refresh round trip so a hung
	// upstream cannot wedge a session read.
	RefreshTimeout time.Duration `env:"AUTH_REFRESH_TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to authentication configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL < time.Hour {
		a.SessionTTL = time.Hour
	}
	if a.FallbackAccessTTL <= 0 {
		a.FallbackAccessTTL = time.Hour
	}
	if a.RefreshTimeout <= 0 {
		a.RefreshTimeout = 10 * time.Second
	}
}
