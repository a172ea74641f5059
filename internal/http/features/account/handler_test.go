package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/auth"
	"github.com/jsierra/portfolio-accounts/internal/domain"
	"github.com/jsierra/portfolio-accounts/internal/http/middleware"
)

type fakeGuard struct {
	registerUser *domain.User
	registerErr  error
	outcome      *auth.Outcome
	outcomeErr   error
}

func (g *fakeGuard) Register(_ context.Context, name, email, password string) (*domain.User, error) {
	return g.registerUser, g.registerErr
}

func (g *fakeGuard) Authenticate(_ context.Context, email, password string) (*auth.Outcome, error) {
	return g.outcome, g.outcomeErr
}

type fakeSessions struct {
	session *domain.Session
	err     error
}

func (s *fakeSessions) Issue(user *domain.User) (*domain.Session, error) { return s.session, s.err }
func (s *fakeSessions) TTL() time.Duration                               { return time.Hour }

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestRegisterValidationFailure(t *testing.T) {
	h := NewHandle(&fakeGuard{}, &fakeSessions{}, nil)

	rr := postJSON(t, h.Register, `{"nombre":"A","correo":"bad","contraseña":"weak","confirmar_contraseña":"other"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	for _, field := range []string{"nombre", "correo", "contraseña", "confirmar_contraseña"} {
		if resp.Fields[field] == "" {
			t.Errorf("missing error for field %q", field)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := NewHandle(&fakeGuard{registerErr: domain.ErrUserAlreadyExists}, &fakeSessions{}, nil)

	rr := postJSON(t, h.Register, `{"nombre":"Ana","correo":"ana@example.com","contraseña":"Segura-123","confirmar_contraseña":"Segura-123"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

func TestRegisterSuccess(t *testing.T) {
	registered := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	h := NewHandle(&fakeGuard{registerUser: &domain.User{
		ID: 1, Name: "Ana", Email: "ana@example.com", RegisteredAt: registered,
	}}, &fakeSessions{}, nil)

	rr := postJSON(t, h.Register, `{"nombre":"Ana","correo":"ana@example.com","contraseña":"Segura-123","confirmar_contraseña":"Segura-123"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "contraseña") {
		t.Error("response leaks the credential field")
	}
}

func TestLoginSuccessSetsCookie(t *testing.T) {
	expires := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	h := NewHandle(
		&fakeGuard{outcome: &auth.Outcome{Status: auth.OutcomeSuccess, User: &domain.User{ID: 1, Name: "Ana"}}},
		&fakeSessions{session: &domain.Session{Token: "signed-token", UserID: 1, Name: "Ana", ExpiresAt: expires}},
		nil,
	)

	rr := postJSON(t, h.Login, `{"correo":"ana@example.com","contraseña":"Segura-123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Token   string `json:"token"`
		Usuario struct {
			ID     int64  `json:"id"`
			Nombre string `json:"nombre"`
		} `json:"usuario"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Token != "signed-token" || resp.Usuario.ID != 1 {
		t.Errorf("response = %+v", resp)
	}

	cookie := findCookie(t, rr.Result().Cookies(), middleware.SessionCookieName)
	if cookie.Value != "signed-token" {
		t.Errorf("cookie value = %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
}

func TestLoginLockedAccount(t *testing.T) {
	retryAfter := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	h := NewHandle(&fakeGuard{outcome: &auth.Outcome{Status: auth.OutcomeLocked, RetryAfter: retryAfter}}, &fakeSessions{}, nil)

	rr := postJSON(t, h.Login, `{"correo":"ana@example.com","contraseña":"Segura-123"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "retry_after") {
		t.Error("locked response missing retry_after")
	}
}

// A wrong password and a nonexistent account must be indistinguishable.
func TestLoginDoesNotRevealAccountExistence(t *testing.T) {
	bad := NewHandle(&fakeGuard{outcome: &auth.Outcome{Status: auth.OutcomeBadCredential, AttemptsRemaining: 3}}, &fakeSessions{}, nil)
	unknown := NewHandle(&fakeGuard{outcome: &auth.Outcome{Status: auth.OutcomeUnknownUser}}, &fakeSessions{}, nil)

	body := `{"correo":"ana@example.com","contraseña":"Segura-123"}`
	rrBad := postJSON(t, bad.Login, body)
	rrUnknown := postJSON(t, unknown.Login, body)

	if rrBad.Code != http.StatusUnauthorized || rrUnknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401 / 401", rrBad.Code, rrUnknown.Code)
	}
	if rrBad.Body.String() != rrUnknown.Body.String() {
		t.Errorf("responses differ:\n  bad credential: %s\n  unknown user:   %s",
			rrBad.Body.String(), rrUnknown.Body.String())
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	h := NewHandle(&fakeGuard{outcome: &auth.Outcome{Status: auth.OutcomeInactive}}, &fakeSessions{}, nil)

	rr := postJSON(t, h.Login, `{"correo":"ana@example.com","contraseña":"Segura-123"}`)
	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

func TestLogoutExpiresCookie(t *testing.T) {
	h := NewHandle(&fakeGuard{}, &fakeSessions{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	cookie := findCookie(t, rr.Result().Cookies(), middleware.SessionCookieName)
	if cookie.MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative", cookie.MaxAge)
	}
}

func findCookie(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}
