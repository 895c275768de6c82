package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/forms"
	"github.com/KrownWealth/afrozonauto-admin/internal/http/validation"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
	"github.com/KrownWealth/afrozonauto-admin/internal/service"
)

// AuthServiceInterface defines the interface for auth service operations.
type AuthServiceInterface interface {
	Authenticate(ctx context.Context, in ports.LoginInput) (*domainauth.Session, error)
	CurrentSession(ctx context.Context, sessionID string) (*domainauth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the credential payload, accepted as JSON or form fields.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles the credential exchange endpoint.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := h.readLoginRequest(w, r)
	if !ok {
		return
	}

	// Field validation mirrors the sign-in form: both checks run so the
	// response carries every field's error, not just the first.
	email := forms.NewField(req.Email, validation.Required("Email", 255), validation.Email("Email"))
	password := forms.NewField(req.Password,
		validation.Required("Password", 128),
		validation.MinLen("Password", 4),
	)

	emailOK := email.Validate()
	passwordOK := password.Validate()
	if !emailOK || !passwordOK {
		fieldErrors := map[string]string{}
		if email.Error != "" {
			fieldErrors["email"] = email.Error
		}
		if password.Error != "" {
			fieldErrors["password"] = password.Error
		}
		WriteValidationErrors(w, fieldErrors)
		return
	}

	session, err := h.Svc.Authenticate(r.Context(), ports.LoginInput{
		Email:    email.Value,
		Password: password.Value,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			// One uniform message for every rejection shape.
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "invalid_credentials",
				Err:     errors.New("Invalid email or password."),
			})
			return
		}
		h.logger().ErrorContext(r.Context(), "credential exchange failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "login_unavailable",
			Err:     errors.New("sign-in is temporarily unavailable"),
		})
		return
	}

	h.setSessionCookie(w, r, *session)

	// A stored redirect intent wins over the role landing page, and is
	// cleared the moment it is used.
	destination := domainauth.LandingPath(session.Role)
	if pending := pendingRedirect(r); pending != "" {
		destination = pending
		clearCookie(w, r, h.CookieDomain, RedirectCookieName)
	}

	if wantsHTML(r) {
		http.Redirect(w, r, destination, http.StatusSeeOther)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          sessionUserPayload(session),
		"redirectTo":    destination,
	})
}

// Logout handles the logout endpoint.
// POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if logoutErr := h.Svc.Logout(r.Context(), cookie.Value); logoutErr != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", logoutErr)
		}
	}

	clearCookie(w, r, h.CookieDomain, SessionCookieName)
	clearCookie(w, r, h.CookieDomain, RedirectCookieName)

	if wantsHTML(r) {
		http.Redirect(w, r, domainauth.SignInPath, http.StatusSeeOther)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "signed_out",
		"redirectTo": domainauth.SignInPath,
	})
}

// Session returns the current session view.
// GET /auth/session.
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	session, err := h.Svc.CurrentSession(r.Context(), cookie.Value)
	if err != nil {
		// Session is invalid or expired, clear the cookie.
		clearCookie(w, r, h.CookieDomain, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          sessionUserPayload(session),
		"refreshFailed": session.RefreshFailed,
		"expiresAt":     session.ExpiresAt,
	})
}

func sessionUserPayload(s *domainauth.Session) map[string]any {
	return map[string]any{
		"id":       s.UserID,
		"email":    s.Email,
		"fullName": s.FullName,
		"role":     s.Role,
	}
}

// readLoginRequest accepts credentials as JSON or classic form fields.
func (h *AuthHandlers) readLoginRequest(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var req loginRequest
		if !DecodeJSON(w, r, &req) {
			return loginRequest{}, false
		}
		return req, true
	}

	if err := r.ParseForm(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_form", Err: err})
		return loginRequest{}, false
	}
	return loginRequest{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}, true
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.ID,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// wantsHTML reports whether the caller is a browser form submission rather
// than an API client.
func wantsHTML(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
