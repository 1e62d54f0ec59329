package handler

import (
	"errors"
	"net/http"

	"app/internal/service"

	"github.com/rs/zerolog"
)

// WebhookHandler accepts Ko-fi payment notifications.
type WebhookHandler struct {
	kofiService service.KofiService
	logger      zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(kofiService service.KofiService, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{kofiService: kofiService, logger: logger}
}

// RegisterRoutes mounts the webhook route. Ko-fi cannot authenticate with a
// user token, so the route sits outside the auth middleware; the service
// verifies the shared secret inside the payload instead.
func (h *WebhookHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /kofi-webhook", h.kofiWebhook)
}

func (h *WebhookHandler) kofiWebhook(w http.ResponseWriter, r *http.Request) {
	// Ko-fi posts form-encoded with the event JSON in the "data" field.
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	payload := r.FormValue("data")
	if payload == "" {
		writeError(w, http.StatusBadRequest, "missing data field")
		return
	}

	if err := h.kofiService.ProcessWebhook(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			h.logger.Warn().Msg("Rejected Ko-fi webhook with bad verification token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
		case errors.Is(err, service.ErrMalformedPayload):
			h.logger.Warn().Err(err).Msg("Rejected malformed Ko-fi webhook")
			writeError(w, http.StatusBadRequest, "malformed payload")
		default:
			// Applicable events are always acknowledged; only decode and
			// verification failures reach here.
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	// Plain-text acknowledgment so Ko-fi does not retry.
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
