package report

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cityfix/cityfix-api/internal/middleware"
	"github.com/cityfix/cityfix-api/internal/pkg/response"
	"github.com/cityfix/cityfix-api/internal/pkg/storage"
	"github.com/cityfix/cityfix-api/internal/pkg/validator"
)

// Handler handles report HTTP requests
type Handler struct {
	service      *Service
	maxImageSize int64
	maxImages    int
}

// NewHandler creates report handler
func NewHandler(service *Service, maxImageSizeMB, maxImages int) *Handler {
	return &Handler{
		service:      service,
		maxImageSize: int64(maxImageSizeMB) << 20,
		maxImages:    maxImages,
	}
}

// List handles GET /api/v1/reports
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Sort:     r.URL.Query().Get("sort"),
		Page:     parsePage(r.URL.Query().Get("page")),
	}

	if filter.Status != "" && !IsValidStatus(filter.Status) {
		response.BadRequest(w, "Invalid status filter")
		return
	}
	// category is a Postgres enum; an unchecked value would fail the
	// cast inside the query instead of the request
	if filter.Category != "" && !IsValidCategory(filter.Category) {
		response.BadRequest(w, "Invalid category filter")
		return
	}

	summaries, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list reports")
		response.InternalError(w)
		return
	}

	response.WithMeta(w, summaries, response.PageMeta(total, filter.Page, PageSize))
}

// Get handles GET /api/v1/reports/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	detail, err := h.service.Get(r.Context(), middleware.GetIdentity(r.Context()), id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			response.NotFound(w, "Report not found")
			return
		}
		log.Error().Err(err).Str("report_id", id.String()).Msg("Failed to get report")
		response.InternalError(w)
		return
	}

	response.OK(w, detail)
}

// Create handles POST /api/v1/reports (multipart/form-data)
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	if err := r.ParseMultipartForm(h.maxImageSize * int64(h.maxImages)); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	req := &CreateRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Address:     r.FormValue("address"),
	}
	if v := r.FormValue("latitude"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.BadRequest(w, "Invalid latitude")
			return
		}
		req.Latitude = &lat
	}
	if v := r.FormValue("longitude"); v != "" {
		lng, err := strconv.ParseFloat(v, 64)
		if err != nil {
			response.BadRequest(w, "Invalid longitude")
			return
		}
		req.Longitude = &lng
	}

	if fields := validator.Validate(req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	uploads, err := h.readUploads(r)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooManyImages):
			response.BadRequest(w, "Too many images attached")
		case errors.Is(err, storage.ErrFileTooLarge):
			response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image exceeds the size limit")
		case errors.Is(err, storage.ErrInvalidMimeType), errors.Is(err, storage.ErrEmptyFile):
			response.BadRequest(w, "Only JPEG and PNG images are accepted")
		default:
			log.Error().Err(err).Msg("Failed to read uploads")
			response.InternalError(w)
		}
		return
	}

	summary, err := h.service.Create(r.Context(), identity, req, uploads)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			response.Forbidden(w, "Not allowed to create reports")
		case errors.Is(err, ErrTooManyImages):
			response.BadRequest(w, "Too many images attached")
		default:
			log.Error().Err(err).Msg("Failed to create report")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, summary)
}

// UpdateStatus handles PATCH /api/v1/reports/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	var req UpdateStatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fields := validator.Validate(&req); fields != nil {
		response.ValidationError(w, fields)
		return
	}

	rep, err := h.service.UpdateStatus(r.Context(), middleware.GetIdentity(r.Context()), id, Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			response.Forbidden(w, "Not allowed to change report status")
		case errors.Is(err, ErrReportNotFound):
			response.NotFound(w, "Report not found")
		default:
			log.Error().Err(err).Str("report_id", id.String()).Msg("Failed to update report status")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, rep)
}

// Delete handles DELETE /api/v1/reports/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid report ID")
		return
	}

	err = h.service.Delete(r.Context(), middleware.GetIdentity(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAllowed):
			response.Forbidden(w, "Not allowed to delete this report")
		case errors.Is(err, ErrReportNotFound):
			response.NotFound(w, "Report not found")
		default:
			log.Error().Err(err).Str("report_id", id.String()).Msg("Failed to delete report")
			response.InternalError(w)
		}
		return
	}

	response.NoContent(w)
}

func (h *Handler) readUploads(r *http.Request) ([]Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	files := r.MultipartForm.File["images"]
	if len(files) > h.maxImages {
		return nil, ErrTooManyImages
	}

	uploads := make([]Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}

		data, _, err := storage.ValidateImage(f, h.maxImageSize)
		f.Close()
		if err != nil {
			return nil, err
		}

		uploads = append(uploads, Upload{Data: data, Alt: fh.Filename})
	}
	return uploads, nil
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
