package auth

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/pkg/response"
	"github.com/cityfix/cityfix-api/internal/pkg/validator"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	tokens, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			response.Conflict(w, "Email already registered")
			return
		}
		log.Error().Err(err).Msg("Failed to register user")
		response.InternalError(w)
		return
	}

	response.Created(w, tokens)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	tokens, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
			return
		}
		log.Error().Err(err).Msg("Failed to log in user")
		response.InternalError(w)
		return
	}

	response.OK(w, tokens)
}
