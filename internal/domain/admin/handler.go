package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/domain/report"
	"github.com/cityfix/cityfix-api/internal/middleware"
	"github.com/cityfix/cityfix-api/internal/pkg/response"
	"github.com/cityfix/cityfix-api/internal/pkg/validator"
)

// Handler handles admin HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/v1/admin/reports
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ListFilter{
		Status:    q.Get("status"),
		Category:  q.Get("category"),
		Search:    q.Get("search"),
		DateFrom:  q.Get("date_from"),
		DateTo:    q.Get("date_to"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      parsePage(q.Get("page")),
	}

	if filter.Status != "" && !report.IsValidStatus(filter.Status) {
		response.BadRequest(w, "Invalid status filter")
		return
	}
	if filter.Category != "" && !report.IsValidCategory(filter.Category) {
		response.BadRequest(w, "Invalid category filter")
		return
	}
	if filter.SortOrder != "" && filter.SortOrder != "asc" && filter.SortOrder != "desc" {
		response.BadRequest(w, "Invalid sort order, expected asc or desc")
		return
	}
	// assigned_to takes a user id or the "unassigned" sentinel
	if v := q.Get("assigned_to"); v != "" {
		if v == "unassigned" {
			filter.Unassigned = true
		} else {
			id, err := uuid.Parse(v)
			if err != nil {
				response.BadRequest(w, "Invalid assignee ID")
				return
			}
			filter.AssignedTo = &id
		}
	}

	page, total, err := h.service.List(r.Context(), middleware.GetIdentity(r.Context()), filter)
	if err != nil {
		if errors.Is(err, ErrNotAllowed) {
			response.Forbidden(w, "Insufficient permissions")
			return
		}
		log.Error().Err(err).Msg("Failed to list reports for triage")
		response.InternalError(w)
		return
	}

	response.WithMeta(w, page, response.PageMeta(total, filter.Page, report.PageSize))
}

// Assign handles POST /api/v1/admin/reports/{id}/assign
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	var req AssignRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	err = h.service.Assign(r.Context(), middleware.GetIdentity(r.Context()), id, req.AssignedTo)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			response.Forbidden(w, "Not allowed to assign reports")
		case errors.Is(err, ErrReportNotFound):
			response.NotFound(w, "Report not found")
		case errors.Is(err, ErrInvalidAssignee):
			response.BadRequest(w, "Assignee must be a staff or admin account")
		default:
			log.Error().Err(err).Str("report_id", id.String()).Msg("Failed to assign report")
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

// BulkStatus handles POST /api/v1/admin/reports/bulk-status
func (h *Handler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	var req BulkStatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	result, err := h.service.BulkStatus(r.Context(), middleware.GetIdentity(r.Context()), &req)
	if err != nil {
		h.bulkError(w, err, "Failed to bulk update status")
		return
	}

	response.OK(w, result)
}

// BulkAssign handles POST /api/v1/admin/reports/bulk-assign
func (h *Handler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var req BulkAssignRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	result, err := h.service.BulkAssign(r.Context(), middleware.GetIdentity(r.Context()), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidAssignee) {
			response.BadRequest(w, "Assignee must be a staff or admin account")
			return
		}
		h.bulkError(w, err, "Failed to bulk assign")
		return
	}

	response.OK(w, result)
}

// BulkDelete handles DELETE /api/v1/admin/reports/bulk-delete
func (h *Handler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	result, err := h.service.BulkDelete(r.Context(), middleware.GetIdentity(r.Context()), &req)
	if err != nil {
		h.bulkError(w, err, "Failed to bulk delete")
		return
	}

	response.OK(w, result)
}

// Stats handles GET /api/v1/admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		if errors.Is(err, ErrNotAllowed) {
			response.Forbidden(w, "Insufficient permissions")
			return
		}
		log.Error().Err(err).Msg("Failed to load stats")
		response.InternalError(w)
		return
	}

	response.OK(w, stats)
}

// ListStaff handles GET /api/v1/admin/staff
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := h.service.ListStaff(r.Context(), middleware.GetIdentity(r.Context()))
	if err != nil {
		if errors.Is(err, ErrNotAllowed) {
			response.Forbidden(w, "Insufficient permissions")
			return
		}
		log.Error().Err(err).Msg("Failed to list staff")
		response.InternalError(w)
		return
	}

	response.OK(w, staff)
}

func (h *Handler) bulkError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotAllowed):
		response.Forbidden(w, "Not allowed to run bulk actions")
	case errors.Is(err, ErrReportsMissing):
		response.Error(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "One or more reports do not exist")
	default:
		log.Error().Err(err).Msg(msg)
		response.InternalError(w)
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
