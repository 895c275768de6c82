package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/KrownWealth/afrozonauto-admin/config"
	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

var (
	// ErrInvalidCredentials is the uniform failure signal for a rejected
	// login. Callers surface it as inline form feedback and never leak the
	// provider's diagnostic detail.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoSession is returned when no usable session exists for the ID.
	ErrNoSession = errors.New("no active session")
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.IdentityProvider
	Sessions ports.SessionStore
	Tokens   ports.TokenDecoder
	Config   config.AuthConfig
	Logger   *slog.Logger
}

// AuthService orchestrates the session lifecycle: credential exchange,
// session persistence, and the refresh-on-read path that keeps access
// tokens current without the caller ever seeing a stale one.
type AuthService struct {
	provider ports.IdentityProvider
	sessions ports.SessionStore
	tokens   ports.TokenDecoder
	config   config.AuthConfig
	logger   *slog.Logger

	// refreshGroup collapses concurrent refreshes of the same session into
	// one upstream call; the losers share the winner's result.
	refreshGroup singleflight.Group
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Provider == nil {
		return nil, errors.New("identity provider is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if opts.Tokens == nil {
		return nil, errors.New("token decoder is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		tokens:   opts.Tokens,
		config:   opts.Config,
		logger:   logger.With("component", "auth_service"),
	}, nil
}

// Authenticate exchanges credentials for a persisted session. Any rejection
// from the identity provider collapses into ErrInvalidCredentials so the
// caller renders one uniform message; transport failures are returned as-is.
func (s *AuthService) Authenticate(
	ctx context.Context,
	in ports.LoginInput,
) (*domainauth.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	identity, pair, err := s.provider.Login(ctx, in)
	if err != nil {
		if errors.Is(err, ports.ErrLoginRejected) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("exchange credentials: %w", err)
	}

	now := time.Now()
	session := domainauth.Session{
		ID:              uuid.New().String(),
		UserID:          identity.UserID,
		Email:           identity.Email,
		FullName:        identity.FullName,
		Role:            identity.Role,
		AccessToken:     pair.AccessToken,
		RefreshToken:    pair.RefreshToken,
		AccessExpiresAt: s.accessExpiry(ctx, pair.AccessToken, now),
		ExpiresAt:       now.Add(s.config.SessionTTL),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	s.logger.InfoContext(ctx, "session established",
		"user_id", session.UserID,
		"role", session.Role,
	)
	return &session, nil
}

// CurrentSession loads the session and keeps its access token fresh: an
// expired token triggers exactly one refresh attempt per call. A failed
// refresh does not destroy the session; it is flagged so navigation can
// force a clean re-login.
func (s *AuthService) CurrentSession(
	ctx context.Context,
	sessionID string,
) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	now := time.Now()
	if session.RefreshFailed {
		// Already flagged: hand it back as-is so navigation forces the
		// re-login. Reclaiming the record is the sweeper's job.
		return &session, nil
	}
	if !session.Usable(now) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			s.logger.WarnContext(ctx, "cleanup expired session", "error", deleteErr)
		}
		return nil, ErrNoSession
	}

	if session.AccessExpired(now) {
		session = s.refreshSession(ctx, session)
	}

	return &session, nil
}

// Logout removes a session. A missing ID is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// refreshSession performs the single refresh attempt for an expired access
// token. On success the rotated pair is persisted; on failure the session is
// flagged and persisted so subsequent reads skip straight to re-login.
func (s *AuthService) refreshSession(
	ctx context.Context,
	session domainauth.Session,
) domainauth.Session {
	result, _, _ := s.refreshGroup.Do(session.ID, func() (any, error) {
		return s.doRefresh(ctx, session), nil
	})
	refreshed, ok := result.(domainauth.Session)
	if !ok {
		return session
	}
	return refreshed
}

func (s *AuthService) doRefresh(
	ctx context.Context,
	session domainauth.Session,
) domainauth.Session {
	refreshCtx, cancel := context.WithTimeout(ctx, s.config.RefreshTimeout)
	defer cancel()

	pair, err := s.provider.Refresh(refreshCtx, session.RefreshToken)
	if err != nil {
		s.logger.WarnContext(ctx, "token refresh failed",
			"user_id", session.UserID,
			"error", err,
		)
		session.RefreshFailed = true
	} else {
		session.AccessToken = pair.AccessToken
		session.RefreshToken = pair.RefreshToken
		session.AccessExpiresAt = s.accessExpiry(ctx, pair.AccessToken, time.Now())
		session.RefreshFailed = false
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		s.logger.WarnContext(ctx, "persist refreshed session", "error", saveErr)
	}
	return session
}

// accessExpiry decodes the expiry claim from an access token. An opaque or
// claim-less token is not an authentication failure: the session falls back
// to a fixed horizon and refreshes from there.
func (s *AuthService) accessExpiry(ctx context.Context, token string, now time.Time) time.Time {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		s.logger.WarnContext(ctx, "access token expiry not decodable, using fallback",
			"fallback", s.config.FallbackAccessTTL,
			"error", err,
		)
		return now.Add(s.config.FallbackAccessTTL)
	}
	return claims.ExpiresAt
}
