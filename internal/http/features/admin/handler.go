package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jsierra/portfolio-accounts/internal/domain"
	"github.com/jsierra/portfolio-accounts/internal/httputil"
)

// UserLister lists registered accounts.
// Implemented by repository.UsersRepository.
type UserLister interface {
	List(ctx context.Context) ([]*domain.User, error)
}

// Handle serves the admin views.
type Handle struct {
	users  UserLister
	logger *slog.Logger
}

// NewHandle creates a new admin handler.
func NewHandle(users UserLister, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{users: users, logger: logger}
}

type userRow struct {
	ID            int64   `json:"id"`
	Nombre        string  `json:"nombre"`
	Correo        string  `json:"correo"`
	FechaRegistro string  `json:"fecha_registro"`
	UltimoAcceso  *string `json:"ultimo_acceso"`
	Activo        bool    `json:"activo"`
	IntentosLogin int     `json:"intentos_login"`
	Bloqueado     bool    `json:"bloqueado"`
}

// ListUsers handles GET /v1/admin/usuarios. Newest registrations first;
// credential hashes are never included.
func (h *Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "user listing failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	now := time.Now()
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		row := userRow{
			ID:            u.ID,
			Nombre:        u.Name,
			Correo:        u.Email,
			FechaRegistro: u.RegisteredAt.Format(time.RFC3339),
			Activo:        u.Active,
			IntentosLogin: u.FailedLoginAttempts,
			Bloqueado:     u.IsLocked(now),
		}
		if u.LastLoginAt != nil {
			s := u.LastLoginAt.Format(time.RFC3339)
			row.UltimoAcceso = &s
		}
		rows = append(rows, row)
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"usuarios": rows,
		"total":    len(rows),
	})
}
