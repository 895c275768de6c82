// Package devauth provides a config-driven IdentityProvider for local
// development. It mirrors the upstream identity contract (credential
// exchange and refresh-token rotation) so the full session lifecycle
// runs without network access.
package devauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// ErrLoginRejected is returned for a credential pair that does not match
// the configured dev identity.
var ErrLoginRejected = fmt.Errorf("dev auth: %w", ports.ErrLoginRejected)

// ErrRefreshRejected is returned for a refresh token this provider did not mint.
var ErrRefreshRejected = fmt.Errorf("dev auth: %w", ports.ErrRefreshRejected)

// Config controls the dev identity provider.
type Config struct {
	UserID   string
	Email    string
	FullName string
	Password string
	Role     domainauth.Role

	SigningKey string

	AccessTTL  time.Duration // default 15m when zero
	RefreshTTL time.Duration // default 168h when zero
}

// Provider implements ports.IdentityProvider for local development.
// The configured password is bcrypt-hashed at construction so the plain
// value never sits in memory longer than necessary.
type Provider struct {
	userID       string
	email        string
	fullName     string
	passwordHash []byte
	role         domainauth.Role
	signingKey   []byte
	accessTTL    time.Duration
	refreshTTL   time.Duration
}

// NewProvider constructs a dev identity provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("dev auth: Password is required")
	}
	if cfg.SigningKey == "" {
		return nil, errors.New("dev auth: SigningKey is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("dev auth: hash password: %w", err)
	}

	accessTTL := cfg.AccessTTL
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 168 * time.Hour
	}

	userID := cfg.UserID
	if userID == "" {
		userID = "dev-user"
	}

	return &Provider{
		userID:       userID,
		email:        cfg.Email,
		fullName:     cfg.FullName,
		passwordHash: hash,
		role:         cfg.Role,
		signingKey:   []byte(cfg.SigningKey),
		accessTTL:    accessTTL,
		refreshTTL:   refreshTTL,
	}, nil
}

// Login verifies the credential pair against the configured identity and
// mints a fresh token pair.
func (p *Provider) Login(
	_ context.Context,
	in ports.LoginInput,
) (domainauth.Identity, domainauth.TokenPair, error) {
	if in.Email != p.email {
		return domainauth.Identity{}, domainauth.TokenPair{}, ErrLoginRejected
	}
	if err := bcrypt.CompareHashAndPassword(p.passwordHash, []byte(in.Password)); err != nil {
		return domainauth.Identity{}, domainauth.TokenPair{}, ErrLoginRejected
	}

	pair, err := p.mintPair()
	if err != nil {
		return domainauth.Identity{}, domainauth.TokenPair{}, err
	}

	identity := domainauth.Identity{
		UserID:   p.userID,
		Email:    p.email,
		FullName: p.fullName,
		Role:     p.role,
	}
	return identity, pair, nil
}

// Refresh verifies the refresh token and mints a rotated pair.
func (p *Provider) Refresh(_ context.Context, refreshToken string) (domainauth.TokenPair, error) {
	claims := &devClaims{}
	tok, err := jwt.ParseWithClaims(refreshToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.signingKey, nil
	})
	if err != nil || !tok.Valid || claims.TokenType != "refresh" {
		return domainauth.TokenPair{}, ErrRefreshRejected
	}

	return p.mintPair()
}

// devClaims is the claim shape minted by this provider, matching what the
// upstream identity service puts in its tokens.
type devClaims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (p *Provider) mintPair() (domainauth.TokenPair, error) {
	access, err := p.mint("access", p.accessTTL)
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("dev auth: sign access token: %w", err)
	}
	refresh, err := p.mint("refresh", p.refreshTTL)
	if err != nil {
		return domainauth.TokenPair{}, fmt.Errorf("dev auth: sign refresh token: %w", err)
	}
	return domainauth.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (p *Provider) mint(tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &devClaims{
		Email:     p.email,
		Role:      string(p.role),
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "afrozonauto-admin-dev",
			ID:        uuid.New().String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signingKey)
}
