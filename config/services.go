package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSessionReaper runs the session reaper for cleanup of
	// refresh-failed and expired sessions.
	ServiceModeSessionReaper ServiceMode = "session-reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeSessionReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	parts := strings.Split(servicesStr, ",")
	for _, part := range parts {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeSessionReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, session-reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// SessionReaperConfig controls the background session cleanup loop.
type SessionReaperConfig struct {
	// Interval between reaper sweeps.
	Interval time.Duration `env:"SESSION_REAPER_INTERVAL" envDefault:"5m"`

	// BatchSize is the maximum number of session keys scanned per sweep.
	BatchSize int `env:"SESSION_REAPER_BATCH_SIZE" envDefault:"200"`
}

// Sanitize applies guardrails to session reaper configuration values.
func (s *SessionReaperConfig) Sanitize() {
	if s.Interval < time.Minute {
		s.Interval = time.Minute
	}
	if s.BatchSize < 1 {
		s.BatchSize = 200
	}
}
