package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/api/v1/dto"
	"app/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AuthHandler handles signup and login endpoints.
type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, v *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, validate: v, logger: logger}
}

// RegisterRoutes mounts the auth routes.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/signup", h.signup)
	mux.HandleFunc("POST /auth/login", h.login)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	identity, err := h.authService.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		// Identity-provider rejection and profile-write rejection both surface
		// as 400; the profile path has already rolled the identity back.
		h.logger.Warn().Err(err).Str("email", req.Email).Msg("Signup failed")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SignupResponseDTO{
		User: dto.UserResponseDTO{ID: identity.ID, Email: identity.Email},
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	session, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Login failed against identity provider")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := dto.LoginResponseDTO{
		Session: dto.SessionResponseDTO{
			AccessToken:  session.AccessToken,
			TokenType:    session.TokenType,
			ExpiresIn:    session.ExpiresIn,
			RefreshToken: session.RefreshToken,
		},
	}
	if session.User != nil {
		resp.User = &dto.UserResponseDTO{ID: session.User.ID, Email: session.User.Email}
	}
	writeJSON(w, http.StatusOK, resp)
}
