// Package tokens decodes upstream-issued access tokens.
package tokens

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
)

// ErrDecode is returned when a token cannot be parsed or is missing
// required claims. Callers recover with a default expiry; the error is
// logged, never surfaced to users.
var ErrDecode = errors.New("access token decode failed")

// accessClaims is the claim shape minted by the marketplace identity service.
type accessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Decoder extracts claims from access tokens without verifying the
// signature. Signature verification happens upstream; this service only
// needs the expiry for refresh scheduling and the role for edge routing.
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder constructs a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode parses the token and returns its validated claims.
// A token without a parseable expiry claim is rejected outright so no
// caller ever trusts unchecked fields.
func (d *Decoder) Decode(token string) (domainauth.TokenClaims, error) {
	if token == "" {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: empty token", ErrDecode)
	}

	claims := &accessClaims{}
	if _, _, err := d.parser.ParseUnverified(token, claims); err != nil {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	if claims.ExpiresAt == nil {
		return domainauth.TokenClaims{}, fmt.Errorf("%w: missing exp claim", ErrDecode)
	}

	return domainauth.TokenClaims{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Role:      domainauth.Role(claims.Role),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
