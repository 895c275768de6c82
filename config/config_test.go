package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestParseServices(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    map[ServiceMode]bool
		expectError bool
	}{
		{
			name:  "single service - http",
			input: "http",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP: true,
			},
			expectError: false,
		},
		{
			name:  "single service - session-reaper",
			input: "session-reaper",
			expected: map[ServiceMode]bool{
				ServiceModeSessionReaper: true,
			},
			expectError: false,
		},
		{
			name:  "multiple services",
			input: "http,session-reaper",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:          true,
				ServiceModeSessionReaper: true,
			},
			expectError: false,
		},
		{
			name:  "whitespace and empty parts are tolerated",
			input: " http , ,session-reaper ",
			expected: map[ServiceMode]bool{
				ServiceModeHTTP:          true,
				ServiceModeSessionReaper: true,
			},
			expectError: false,
		},
		{
			name:        "invalid service name",
			input:       "http,scheduler",
			expectError: true,
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "only commas",
			input:       ",,,",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServices(tt.input)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %q, got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseServices(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestAuthModeUnmarshalText(t *testing.T) {
	tests := []struct {
		input       string
		expected    AuthMode
		expectError bool
	}{
		{input: "upstream", expected: AuthModeUpstream},
		{input: "UPSTREAM", expected: AuthModeUpstream},
		{input: "mock", expected: AuthModeMock},
		{input: "oauth", expectError: true},
		{input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.expected {
				t.Errorf("got %q, want %q", mode, tt.expected)
			}
		})
	}
}

func TestAppConfigDefaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModeUpstream {
		t.Errorf("default auth mode = %q, want upstream", cfg.Auth.Mode)
	}
	if cfg.Auth.SessionTTL != 168*time.Hour {
		t.Errorf("default session TTL = %v, want 168h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.FallbackAccessTTL != time.Hour {
		t.Errorf("default fallback access TTL = %v, want 1h", cfg.Auth.FallbackAccessTTL)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("default HTTP addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Upstream.BaseURL == "" {
		t.Error("default upstream base URL should not be empty")
	}
	if !cfg.IsHTTPServerEnabled() {
		t.Error("http service should be enabled by default")
	}
	if !cfg.IsSessionReaperEnabled() {
		t.Error("session-reaper service should be enabled by default")
	}
}

func TestSanitizeGuardrails(t *testing.T) {
	cfg := AppConfig{
		Auth: AuthConfig{
			SessionTTL:        time.Minute,
			FallbackAccessTTL: -1,
			RefreshTimeout:    0,
		},
		Upstream: UpstreamConfig{
			Timeout:    0,
			RetryLimit: -5,
		},
		SessionReaper: SessionReaperConfig{
			Interval:  time.Second,
			BatchSize: 0,
		},
	}
	cfg.Sanitize()

	if cfg.Auth.SessionTTL != time.Hour {
		t.Errorf("session TTL floor = %v, want 1h", cfg.Auth.SessionTTL)
	}
	if cfg.Auth.FallbackAccessTTL != time.Hour {
		t.Errorf("fallback access TTL = %v, want 1h", cfg.Auth.FallbackAccessTTL)
	}
	if cfg.Auth.RefreshTimeout != 10*time.Second {
		t.Errorf("refresh timeout = %v, want 10s", cfg.Auth.RefreshTimeout)
	}
	if cfg.Upstream.Timeout != 15*time.Second {
		t.Errorf("upstream timeout = %v, want 15s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.RetryLimit != 0 {
		t.Errorf("retry limit = %d, want 0", cfg.Upstream.RetryLimit)
	}
	if cfg.SessionReaper.Interval != time.Minute {
		t.Errorf("reaper interval floor = %v, want 1m", cfg.SessionReaper.Interval)
	}
	if cfg.SessionReaper.BatchSize != 200 {
		t.Errorf("reaper batch size = %d, want 200", cfg.SessionReaper.BatchSize)
	}
}
