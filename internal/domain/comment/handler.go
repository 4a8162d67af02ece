package comment

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/middleware"
	"github.com/cityfix/cityfix-api/internal/pkg/response"
	"github.com/cityfix/cityfix-api/internal/pkg/validator"
)

// Handler handles comment HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates comment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /api/v1/reports/{id}/comments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	reportID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	view, err := h.service.Create(r.Context(), middleware.GetIdentity(r.Context()), reportID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			response.Forbidden(w, "Not allowed to comment")
		case errors.Is(err, ErrReportNotFound):
			response.NotFound(w, "Report not found")
		default:
			log.Error().Err(err).Str("report_id", reportID.String()).Msg("Failed to create comment")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, view)
}

// Delete handles DELETE /api/v1/comments/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid comment ID")
		return
	}

	err = h.service.Delete(r.Context(), middleware.GetIdentity(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			response.Forbidden(w, "Not allowed to delete this comment")
		case errors.Is(err, ErrCommentNotFound):
			response.NotFound(w, "Comment not found")
		default:
			log.Error().Err(err).Str("comment_id", id.String()).Msg("Failed to delete comment")
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}
