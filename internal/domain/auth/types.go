package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role as issued by the
// marketplace identity service. Keep string form for easy persistence
// and cookies. Valid values are defined as constants below.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleBuyer      Role = "BUYER"
	RoleOperation  Role = "OPERATION"
)

// IsAdminFamily reports whether the role belongs to the elevated-admin
// family that lands on the admin area.
func (r Role) IsAdminFamily() bool {
	return r == RoleSuperAdmin || r == RoleAdmin || r == RoleBuyer
}

// IsOperations reports whether the role belongs to the operations area.
func (r Role) IsOperations() bool { return r == RoleOperation }

// Known reports whether the role has an entry in the landing table.
// An unknown role is treated as unauthenticated everywhere.
func (r Role) Known() bool {
	_, ok := roleLanding[r]
	return ok
}

// Identity represents the authenticated principal returned by the
// identity endpoint. Adapters map provider-specific payloads into this shape.
type Identity struct {
	UserID   string
	Email    string
	FullName string
	Role     Role
}

// TokenPair holds the opaque credentials minted by the identity service.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenClaims is the strict, validated view of a decoded access token.
// Decoders return it only when the expiry claim is present and parseable.
type TokenClaims struct {
	Subject   string
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (random URL-safe string).
//
// A session is either fully authenticated (identity populated, access token
// present and unexpired or refreshable) or treated as absent; RefreshFailed
// marks the unrecoverable-refresh state that callers must read as absent.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	FullName        string    `json:"full_name"`
	Role            Role      `json:"role"`
	AccessToken     string    `json:"access_token"`
	RefreshToken    string    `json:"refresh_token"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
	RefreshFailed   bool      `json:"refresh_failed"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// AccessExpired reports whether the access token expiry is in the past.
func (s Session) AccessExpired(now time.Time) bool {
	return now.After(s.AccessExpiresAt)
}

// Usable reports whether the session may be handed to pages: identity
// present, not refresh-failed, and the record itself not past its horizon.
func (s Session) Usable(now time.Time) bool {
	if s.RefreshFailed {
		return false
	}
	if s.UserID == "" || s.AccessToken == "" {
		return false
	}
	return now.Before(s.ExpiresAt)
}
