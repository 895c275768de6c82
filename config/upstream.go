package config

import "time"

// UpstreamConfig contains configuration for the upstream marketplace REST API
// that serves the identity, refresh, and resource endpoints.
type UpstreamConfig struct {
	// BaseURL is the base URL for all identity and resource endpoints.
	BaseURL string `env:"BASE_URL" envDefault:"https://api.afrozonauto.com/api"`

	// Timeout bounds a single upstream round trip.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"15s"`

	// RetryLimit is the number of additional attempts for idempotent reads.
	RetryLimit int `env:"RETRY_LIMIT" envDefault:"2"`
}

// Sanitize applies guardrails to upstream configuration values.
func (u *UpstreamConfig) Sanitize() {
	if u.Timeout <= 0 {
		u.Timeout = 15 * time.Second
	}
	if u.RetryLimit < 0 {
		u.RetryLimit = 0
	}
}
