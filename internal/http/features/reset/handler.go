package reset

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsierra/portfolio-accounts/internal/domain"
	"github.com/jsierra/portfolio-accounts/internal/httputil"
	"github.com/jsierra/portfolio-accounts/internal/validate"
)

// Manager is the reset token service consumed by this handler.
// Implemented by auth.ResetTokenManager.
type Manager interface {
	RequestReset(ctx context.Context, email string) error
	ValidateToken(ctx context.Context, rawToken string) (int64, error)
	ConsumeToken(ctx context.Context, rawToken, newPassword string) error
}

// Handle handles the password reset flow.
type Handle struct {
	manager Manager
	logger  *slog.Logger
}

// NewHandle creates a new reset handler.
func NewHandle(manager Manager, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{manager: manager, logger: logger}
}

type forgotRequest struct {
	Correo string `json:"correo"`
}

// Forgot handles POST /v1/password/forgot. Whether or not the email belongs
// to an account, the success response is the same.
func (h *Handle) Forgot(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validate.ResetRequest(req.Correo); len(errs) > 0 {
		httputil.FieldErrors(w, errs)
		return
	}

	err := h.manager.RequestReset(r.Context(), req.Correo)
	if errors.Is(err, domain.ErrEmailDelivery) {
		httputil.Error(w, http.StatusInternalServerError, "could not send the reset email, please try again later")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "reset request failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "if an account exists for that email, a reset link has been sent",
	})
}

// Validate handles GET /v1/password/reset/{token}. Used by the reset page to
// decide whether to show the new-password form.
func (h *Handle) Validate(w http.ResponseWriter, r *http.Request) {
	rawToken := chi.URLParam(r, "token")

	_, err := h.manager.ValidateToken(r.Context(), rawToken)
	if err != nil {
		status, reason := rejectionReason(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "token validation failed", "error", err)
		}
		httputil.JSON(w, status, map[string]any{"valid": false, "reason": reason})
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"valid": true})
}

type resetRequest struct {
	NuevaContrasena     string `json:"nueva_contraseña"`
	ConfirmarContrasena string `json:"confirmar_contraseña"`
}

// Reset handles POST /v1/password/reset/{token}.
func (h *Handle) Reset(w http.ResponseWriter, r *http.Request) {
	rawToken := chi.URLParam(r, "token")

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validate.NewPassword(req.NuevaContrasena, req.ConfirmarContrasena); len(errs) > 0 {
		httputil.FieldErrors(w, errs)
		return
	}

	err := h.manager.ConsumeToken(r.Context(), rawToken, req.NuevaContrasena)
	if err != nil {
		status, reason := rejectionReason(err)
		if status == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "password reset failed", "error", err)
		}
		httputil.Error(w, status, reason)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func rejectionReason(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return http.StatusNotFound, "invalid reset link"
	case errors.Is(err, domain.ErrResetTokenUsed):
		return http.StatusGone, "this reset link has already been used"
	case errors.Is(err, domain.ErrResetTokenExpired):
		return http.StatusGone, "this reset link has expired"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
