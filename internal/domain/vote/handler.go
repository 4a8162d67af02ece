package vote

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/middleware"
	"github.com/cityfix/cityfix-api/internal/pkg/response"
)

// Handler handles vote HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates vote handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Toggle handles POST /api/v1/reports/{id}/vote
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	result, err := h.service.Toggle(r.Context(), middleware.GetIdentity(r.Context()), reportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			response.Forbidden(w, "Not allowed to vote")
		case errors.Is(err, ErrReportNotFound):
			response.NotFound(w, "Report not found")
		default:
			log.Error().Err(err).Str("report_id", reportID.String()).Msg("Failed to toggle vote")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}
