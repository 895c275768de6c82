package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
)

var (
	// ErrSessionNotFound is returned by SessionStore implementations when no
	// session exists for the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrLoginRejected is returned by IdentityProvider implementations when
	// the credential pair is rejected, as opposed to the transport failing.
	ErrLoginRejected = errors.New("login rejected")

	// ErrRefreshRejected is returned by IdentityProvider implementations
	// when the refresh token is rejected.
	ErrRefreshRejected = errors.New("refresh rejected")
)

// LoginInput carries the credential pair for an identity exchange.
type LoginInput struct {
	Email    string
	Password string
}

// IdentityProvider exchanges credentials and refresh tokens against an
// identity service.
type IdentityProvider interface {
	// Login exchanges credentials for the authenticated identity and its
	// token pair. Credential rejection and malformed responses are returned
	// as errors; callers convert them into failure signals.
	Login(ctx context.Context, in LoginInput) (domainauth.Identity, domainauth.TokenPair, error)

	// Refresh exchanges a refresh token for a new token pair. When the
	// identity service omits a rotated refresh token, the input token is
	// returned unchanged in the pair.
	Refresh(ctx context.Context, refreshToken string) (domainauth.TokenPair, error)
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// TokenDecoder extracts validated claims from an access token.
// Decoders are strict: a missing or unparseable expiry claim is an error,
// never a zero-value claim set.
type TokenDecoder interface {
	Decode(token string) (domainauth.TokenClaims, error)
}
