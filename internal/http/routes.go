package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/KrownWealth/afrozonauto-admin/internal/domain/auth"
	"github.com/KrownWealth/afrozonauto-admin/internal/ports"
	"github.com/KrownWealth/afrozonauto-admin/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth     AuthServiceInterface
	Sessions ports.SessionStore
	Tokens   ports.TokenDecoder

	Vehicles  *service.VehicleService
	Users     *service.UserService
	Orders    *service.OrderService
	Payments  *service.PaymentService
	Dashboard *service.DashboardService

	CookieDomain string
	Logger       *slog.Logger // Logger for HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router. Page routes run behind
// the edge guard and the session gate; /api routes get a plain 401 contract
// through RequireAuth; auth endpoints are open by definition.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.HandleFunc("GET /auth/session", authHandlers.Session)

	registerAPIRoutes(mux, services)
	registerPageRoutes(mux, services)

	return mux
}

func registerAPIRoutes(mux *http.ServeMux, services RouterServices) {
	guard := RequireAuth(services.Auth)

	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, guard(h))
	}

	if services.Vehicles != nil {
		vehicles := &VehicleHandlers{Svc: services.Vehicles}
		handle("GET /api/vehicles", vehicles.List)
		handle("POST /api/vehicles", vehicles.Create)
		handle("GET /api/vehicles/{id}", vehicles.Get)
		handle("PUT /api/vehicles/{id}", vehicles.Update)
		handle("DELETE /api/vehicles/{id}", vehicles.Delete)
	}

	if services.Users != nil {
		users := &UserHandlers{Svc: services.Users}
		handle("GET /api/users", users.List)
		handle("GET /api/users/{id}", users.Get)
	}

	if services.Orders != nil {
		orders := &OrderHandlers{Svc: services.Orders}
		handle("GET /api/orders", orders.List)
		handle("GET /api/orders/{id}", orders.Get)
		handle("PATCH /api/orders/{id}", orders.Update)
	}

	if services.Payments != nil {
		payments := &PaymentHandlers{Svc: services.Payments}
		handle("GET /api/payments", payments.List)
		handle("GET /api/payments/{id}", payments.Get)
		handle("POST /api/payments/{id}/refund", payments.Refund)
	}

	if services.Dashboard != nil {
		dashboard := &DashboardHandlers{Svc: services.Dashboard}
		handle("GET /api/dashboard/stats", dashboard.Stats)
	}
}

func registerPageRoutes(mux *http.ServeMux, services RouterServices) {
	edge := EdgeGuard(services.Sessions, services.Tokens, services.CookieDomain)
	gate := SessionGate(services.Auth, services.CookieDomain)
	page := func(h http.Handler) http.Handler { return edge(gate(h)) }

	mux.Handle("GET /{$}", page(PageHandler("Afrozon Auto Admin")))
	mux.Handle("GET "+domainauth.SignInPath, page(SignInPageHandler()))
	mux.Handle("GET "+domainauth.UnauthorizedPath, page(UnauthorizedPageHandler()))

	mux.Handle("GET /admin/dashboard", page(PageHandler("Dashboard")))
	mux.Handle("GET /admin/cars", page(PageHandler("Cars")))
	mux.Handle("GET /admin/users", page(PageHandler("Users")))
	mux.Handle("GET /admin/orders", page(PageHandler("Orders")))
	mux.Handle("GET /admin/payments", page(PageHandler("Payments")))
	mux.Handle("GET /operations/dashboard", page(PageHandler("Operations")))

	// Area subtrees so unknown paths under a guarded prefix still meet the
	// same navigation rules before 404ing.
	mux.Handle("GET /admin/", page(http.NotFoundHandler()))
	mux.Handle("GET /operations/", page(http.NotFoundHandler()))
}
