package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// EdgeGuard returns the outer route guard for page routes. It never
// refreshes tokens: the role comes from decoding the stored access token,
// nothing more. The session gate behind it does the heavy lifting; running
// the same navigation decision at both layers is intentional redundancy,
// so a request that slips past one layer still meets the same rule.
func EdgeGuard(
	sessions ports.SessionStore,
	tokens ports.TokenDecoder,
	cookieDomain string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			in := domainauth.DecideInput{
				Status:          domainauth.StatusUnauthenticated,
				Path:            r.URL.Path,
				PendingRedirect: pendingRedirect(r),
			}

			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				if sess, err := sessions.Get(r.Context(), cookie.Value); err == nil {
					in.Status = domainauth.StatusAuthenticated
					in.RefreshFailed = sess.RefreshFailed
					if claims, err := tokens.Decode(sess.AccessToken); err == nil {
						in.Role = claims.Role
					}
					// An undecodable token leaves Role empty; the decision
					// function treats an unknown role as a forced re-login.
				}
			}

			if applyDecision(w, r, cookieDomain, domainauth.Decide(in)) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionGate returns the inner page-route guard. It resolves the full
// session through the auth service, which refreshes an expired access token
// (at most once per request) and surfaces the refresh-failure flag. The
// resulting navigation decision either redirects or lets the handler render
// with the session in context.
func SessionGate(authSvc AuthServiceInterface, cookieDomain string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromRequest(r, authSvc)

			in := domainauth.DecideInput{
				Status:          domainauth.StatusUnauthenticated,
				Path:            r.URL.Path,
				PendingRedirect: pendingRedirect(r),
			}
			if session != nil {
				in.Status = domainauth.StatusAuthenticated
				in.Role = session.Role
				in.RefreshFailed = session.RefreshFailed
			}

			if applyDecision(w, r, cookieDomain, domainauth.Decide(in)) {
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth returns a middleware for API routes: a usable session goes in
// the request context, anything else is a 401 JSON response. API callers
// never get redirects.
func RequireAuth(authSvc AuthServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromRequest(r, authSvc)
			if session == nil || session.RefreshFailed {
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errors.New("authentication required"),
				})
				return
			}

			ctx := SetSessionInContext(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFromRequest retrieves and resolves a session from the request.
func sessionFromRequest(r *http.Request, authSvc AuthServiceInterface) *domainauth.Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil
	}

	session, err := authSvc.CurrentSession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return session
}

// applyDecision executes a navigation decision: cookie side effects first,
// then at most one redirect. Returns true when the response is written and
// the handler chain must stop.
func applyDecision(
	w http.ResponseWriter,
	r *http.Request,
	cookieDomain string,
	d domainauth.Decision,
) bool {
	if d.PersistPending != "" {
		setPendingRedirect(w, r, cookieDomain, d.PersistPending)
	}
	if d.ConsumePending {
		clearCookie(w, r, cookieDomain, RedirectCookieName)
	}

	switch d.Action {
	case domainauth.ActionRedirect:
		http.Redirect(w, r, d.Target, http.StatusSeeOther)
		return true
	case domainauth.ActionHold:
		// Hold only applies while a client is still resolving its session;
		// a server request always has a resolved status, so render.
		return false
	case domainauth.ActionProceed:
		return false
	default:
		return false
	}
}

// pendingRedirect reads the stored redirect intent, rejecting anything that
// is not a same-origin relative path.
func pendingRedirect(r *http.Request) string {
	cookie, err := r.Cookie(RedirectCookieName)
	if err != nil {
		return ""
	}
	return safeRedirectPath(cookie.Value)
}

// setPendingRedirect stores the decided path so the post-login flow can
// land the user where they were headed. The query string of the current
// request is carried along with it.
func setPendingRedirect(w http.ResponseWriter, r *http.Request, cookieDomain, path string) {
	target := path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	if safeRedirectPath(target) == "" {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     RedirectCookieName,
		Value:    target,
		Path:     "/",
		Domain:   cookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   RedirectCookieMaxAge,
	})
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when
// setting cookies to maximize compatibility across browsers during deletion.
func clearCookie(w http.ResponseWriter, r *http.Request, cookieDomain, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/" and not an absolute URL. Returns "" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	// A pending redirect pointing back at a public page is useless.
	if domainauth.IsPublicPath(u.Path) {
		return ""
	}
	return candidate
}
