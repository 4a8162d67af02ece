package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes registers the standalone comment routes. Creation lives under
// the report subtree; only deletion is addressed by comment ID.
func Routes(h *Handler, auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Delete("/{id}", h.Delete)
	})

	return r
}
