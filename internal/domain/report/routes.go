package report

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middleware wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Routes registers report routes. The vote and comment handlers are
// injected so that the nested /{id}/vote and /{id}/comments endpoints
// live under the report subtree without the report package importing
// those domains.
func Routes(h *Handler, voteToggle, commentCreate http.HandlerFunc, auth, optionalAuth Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.With(optionalAuth).Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.Create)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/vote", voteToggle)
		r.Post("/{id}/comments", commentCreate)
	})

	return r
}
