package contact

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jsierra/portfolio-accounts/internal/httputil"
	"github.com/jsierra/portfolio-accounts/internal/validate"
)

// Notifier forwards contact submissions to the site owner.
// Implemented by notification.EmailService.
type Notifier interface {
	SendContactNotification(to, fromName, fromEmail, subject, message string) error
}

// Handle serves the contact form.
type Handle struct {
	notifier  Notifier
	recipient string
	logger    *slog.Logger
}

// NewHandle creates a new contact handler. notifier may be nil when no SMTP
// server is configured; submissions are then only logged.
func NewHandle(notifier Notifier, recipient string, logger *slog.Logger) *Handle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle{notifier: notifier, recipient: recipient, logger: logger}
}

type submitRequest struct {
	Nombre  string `json:"nombre"`
	Correo  string `json:"correo"`
	Asunto  string `json:"asunto"`
	Mensaje string `json:"mensaje"`
}

// Submit handles POST /v1/contacto.
func (h *Handle) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validate.Contact(req.Nombre, req.Correo, req.Asunto, req.Mensaje); len(errs) > 0 {
		httputil.FieldErrors(w, errs)
		return
	}

	h.logger.InfoContext(r.Context(), "contact form submitted",
		"nombre", req.Nombre,
		"correo", req.Correo,
		"asunto", req.Asunto,
	)

	if h.notifier != nil && h.recipient != "" {
		if err := h.notifier.SendContactNotification(h.recipient, req.Nombre, req.Correo, req.Asunto, req.Mensaje); err != nil {
			h.logger.ErrorContext(r.Context(), "failed to forward contact message", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "could not deliver the message, please try again later")
			return
		}
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "message received"})
}
