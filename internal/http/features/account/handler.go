package account

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/auth"
	"github.com/jsierra/portfolio-accounts/internal/domain"
	"github.com/jsierra/portfolio-accounts/internal/http/middleware"
	"github.com/jsierra/portfolio-accounts/internal/httputil"
	"github.com/jsierra/portfolio-accounts/internal/validate"
)

// Guard is the account service consumed by this handler.
// Implemented by auth.AccountGuard.
type Guard interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*auth.Outcome, error)
}

// Sessions issues session tokens. Implemented by auth.SessionService.
type Sessions interface {
	Issue(user *domain.User) (*domain.Session, error)
	TTL() time.Duration
}

// Handle handles registration, login, and logout.
type Handle struct {
	guard    Guard
	sessions Sessions
	logger   *slog.Logger
}

// NewHandle creates a new account handler.
func NewHandle(guard Guard, sessions Sessions, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{guard: guard, sessions: sessions, logger: logger}
}

type registerRequest struct {
	Nombre              string `json:"nombre"`
	Correo              string `json:"correo"`
	Contrasena          string `json:"contraseña"`
	ConfirmarContrasena string `json:"confirmar_contraseña"`
}

type userResponse struct {
	ID            int64  `json:"id"`
	Nombre        string `json:"nombre"`
	Correo        string `json:"correo"`
	FechaRegistro string `json:"fecha_registro"`
}

// Register handles POST /v1/registro.
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validate.Registration(req.Nombre, req.Correo, req.Contrasena, req.ConfirmarContrasena); len(errs) > 0 {
		httputil.FieldErrors(w, errs)
		return
	}

	user, err := h.guard.Register(r.Context(), req.Nombre, req.Correo, req.Contrasena)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "an account with this email already exists")
			return
		}
		h.logger.ErrorContext(r.Context(), "registration failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, userResponse{
		ID:            user.ID,
		Nombre:        user.Name,
		Correo:        user.Email,
		FechaRegistro: user.RegisteredAt.Format(time.RFC3339),
	})
}

type loginRequest struct {
	Correo     string `json:"correo"`
	Contrasena string `json:"contraseña"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Usuario   struct {
		ID     int64  `json:"id"`
		Nombre string `json:"nombre"`
	} `json:"usuario"`
}

// Login handles POST /v1/login. Unknown accounts and wrong passwords produce
// the same response so callers cannot probe for registered emails.
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validate.Login(req.Correo, req.Contrasena); len(errs) > 0 {
		httputil.FieldErrors(w, errs)
		return
	}

	outcome, err := h.guard.Authenticate(r.Context(), req.Correo, req.Contrasena)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "authentication failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch outcome.Status {
	case auth.OutcomeSuccess:
		session, err := h.sessions.Issue(outcome.User)
		if err != nil {
			h.logger.ErrorContext(r.Context(), "session issue failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		resp := loginResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		}
		resp.Usuario.ID = session.UserID
		resp.Usuario.Nombre = session.Name
		httputil.JSON(w, http.StatusOK, resp)

	case auth.OutcomeLocked:
		httputil.JSON(w, http.StatusForbidden, map[string]any{
			"error":       "account temporarily locked due to repeated failed login attempts",
			"retry_after": outcome.RetryAfter.Format(time.RFC3339),
		})

	case auth.OutcomeInactive:
		httputil.Error(w, http.StatusForbidden, "account is deactivated")

	case auth.OutcomeBadCredential, auth.OutcomeUnknownUser:
		httputil.Error(w, http.StatusUnauthorized, "invalid email or password")

	default:
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// Logout handles POST /v1/logout. Sessions are stateless tokens, so logout
// just expires the cookie on the client.
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		h.logger.InfoContext(r.Context(), "security event", "event", "LOGOUT", "user_id", userID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
