package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cityfix/cityfix-api/internal/domain/user"
	"github.com/cityfix/cityfix-api/internal/middleware"
)

// Routes registers the admin subtree. Everything below requires an
// authenticated identity; the triage listing additionally requires the
// staff or admin role, while the mutations are gated per-operation by
// the capability checks in the services, so a fine-grained grant works
// without a role change. The audit log handler is injected so the
// activity domain stays free of routing concerns.
func Routes(h *Handler, activityList http.HandlerFunc, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(auth)

	r.With(middleware.RequireRole(user.RoleStaff, user.RoleAdmin)).Get("/reports", h.List)
	r.Post("/reports/{id}/assign", h.Assign)
	r.Post("/reports/bulk-status", h.BulkStatus)
	r.Post("/reports/bulk-assign", h.BulkAssign)
	r.Delete("/reports/bulk-delete", h.BulkDelete)
	r.Get("/stats", h.Stats)
	r.Get("/staff", h.ListStaff)
	r.With(middleware.RequireCapability(user.CapAuditView)).Get("/activity", activityList)

	return r
}
