package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/auth"
	"github.com/jsierra/portfolio-accounts/internal/http/features/account"
	"github.com/jsierra/portfolio-accounts/internal/http/features/admin"
	"github.com/jsierra/portfolio-accounts/internal/http/features/contact"
	"github.com/jsierra/portfolio-accounts/internal/http/features/reset"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.Default()
	sessions := auth.NewSessionService(auth.SessionConfig{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
		Issuer: "portfolio-accounts",
		TTL:    time.Hour,
	})

	return NewRouter(RouterConfig{
		Account:  account.NewHandle(nil, sessions, logger),
		Reset:    reset.NewHandle(nil, logger),
		Admin:    admin.NewHandle(nil, logger),
		Contact:  contact.NewHandle(nil, "", logger),
		Sessions: sessions,
		Logger:   logger,
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "ok") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/unknown", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestAdminRouteRequiresSession(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/usuarios", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}
