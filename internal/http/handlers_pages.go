package httpx

import (
	"fmt"
	"html/template"
	"net/http"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
)

// Page routes render a minimal HTML shell; the dashboard's real content
// loads through the /api endpoints. The interesting work — who may see
// which page — happens in the guard middleware in front of these handlers.

var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} · Afrozon Auto Admin</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .User}}<p>Signed in as {{.User.FullName}} ({{.User.Role}})</p>{{end}}
{{if .Message}}<p>{{.Message}}</p>{{end}}
</body>
</html>
`))

type pageData struct {
	Title   string
	Message string
	User    *domainauth.Session
}

func renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		// Headers are already out; nothing sensible left to do.
		return
	}
}

// PageHandler renders a titled shell with the current session, if any.
func PageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderPage(w, pageData{
			Title: title,
			User:  GetSessionFromContext(r.Context()),
		})
	}
}

// SignInPageHandler renders the sign-in form shell. Authenticated visitors
// never reach it; the guards bounce them to their landing page first.
func SignInPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		renderPage(w, pageData{
			Title:   "Sign in",
			Message: "Use your admin credentials to continue.",
		})
	}
}

// UnauthorizedPageHandler renders the access-denied page.
func UnauthorizedPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		session := GetSessionFromContext(r.Context())
		message := "Your account does not have access to this area."
		if session != nil {
			message = fmt.Sprintf("The %s role does not have access to this area.", session.Role)
		}
		if err := pageTemplate.Execute(w, pageData{
			Title:   "Access denied",
			Message: message,
			User:    session,
		}); err != nil {
			return
		}
	}
}
