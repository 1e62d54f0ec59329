package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/entitlement"
	"app/internal/middleware"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ChatHandler handles the gated chat endpoint.
type ChatHandler struct {
	chatService service.ChatService
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService, v *validator.Validate, logger zerolog.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, validate: v, logger: logger}
}

// RegisterRoutes mounts the chat route behind the auth middleware.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /chat", authMw(http.HandlerFunc(h.chat)))
}

func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.UserContextKey).(string)
	if !ok || userID == "" {
		writeError(w, http.StatusUnauthorized, "user ID not found in context")
		return
	}

	var req dto.ChatRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	text, err := h.chatService.Chat(r.Context(), userID, req.Prompt)
	if err != nil {
		var denied *service.EntitlementDeniedError
		switch {
		case errors.As(err, &denied):
			writeError(w, http.StatusForbidden, denyMessage(denied.Reason))
		case errors.Is(err, service.ErrInferenceUnavailable):
			h.logger.Error().Err(err).Str("user_id", userID).Msg("Inference gateway call failed")
			writeError(w, http.StatusInternalServerError, "failed to generate a response")
		default:
			h.logger.Error().Err(err).Str("user_id", userID).Msg("Chat request failed")
			writeError(w, http.StatusInternalServerError, "failed to load profile")
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.ChatResponseDTO{Text: text})
}

func denyMessage(reason entitlement.DenyReason) string {
	switch reason {
	case entitlement.DenyNoCredits:
		return "chat credits exhausted, please upgrade your plan"
	case entitlement.DenyNotPremium:
		return "chat is available to premium subscribers only"
	default:
		return "access denied"
	}
}
