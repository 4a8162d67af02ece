package activity

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cityfix/cityfix-api/internal/pkg/response"
)

const pageSize = 50

// Handler serves the audit log listing
type Handler struct {
	repo Repository
}

// NewHandler creates activity handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns audit records, newest first
// GET /admin/activity
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := Filter{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}

	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid user ID")
			return
		}
		filter.UserID = &id
	}
	if v := q.Get("action"); v != "" {
		action := Action(v)
		filter.Action = &action
	}
	if v := q.Get("subject_type"); v != "" {
		st := SubjectType(v)
		filter.SubjectType = &st
	}
	if v := q.Get("subject_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid subject ID")
			return
		}
		filter.SubjectID = &id
	}
	if v := q.Get("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid date_from, expected YYYY-MM-DD")
			return
		}
		filter.FromDate = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid date_to, expected YYYY-MM-DD")
			return
		}
		filter.ToDate = &t
	}

	activities, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, activities, response.PageMeta(total, page, pageSize))
}
