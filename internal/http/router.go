// Package http wires the feature handlers into a chi router.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jsierra/portfolio-accounts/internal/http/features/account"
	"github.com/jsierra/portfolio-accounts/internal/http/features/admin"
	"github.com/jsierra/portfolio-accounts/internal/http/features/contact"
	"github.com/jsierra/portfolio-accounts/internal/http/features/reset"
	"github.com/jsierra/portfolio-accounts/internal/http/middleware"
	"github.com/jsierra/portfolio-accounts/internal/httputil"
)

// RouterConfig carries everything the router needs.
type RouterConfig struct {
	Account  *account.Handle
	Reset    *reset.Handle
	Admin    *admin.Handle
	Contact  *contact.Handle
	Sessions middleware.SessionVerifier
	Logger   *slog.Logger

	// Rate limiting for the credential endpoints. Disabled when
	// RateLimitEnabled is false.
	RateLimitEnabled      bool
	AuthRequestsPerMinute int
	ResetRequestsPerHour  int
}

// NewRouter builds the HTTP routing tree.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	authLimit := middleware.NoRateLimit()
	resetLimit := middleware.NoRateLimit()
	if cfg.RateLimitEnabled {
		authLimit = middleware.RateLimitByIP(cfg.AuthRequestsPerMinute, time.Minute)
		resetLimit = middleware.RateLimitByIP(cfg.ResetRequestsPerHour, time.Hour)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/registro", cfg.Account.Register)
			r.Post("/login", cfg.Account.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(resetLimit)
			r.Post("/password/forgot", cfg.Reset.Forgot)
		})
		r.Get("/password/reset/{token}", cfg.Reset.Validate)
		r.Post("/password/reset/{token}", cfg.Reset.Reset)

		r.Post("/contacto", cfg.Contact.Submit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.Sessions))
			r.Post("/logout", cfg.Account.Logout)
			r.Get("/admin/usuarios", cfg.Admin.ListUsers)
		})
	})

	return r
}
