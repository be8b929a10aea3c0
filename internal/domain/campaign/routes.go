package campaign

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns campaign router
func (h *Handler) Routes(authMiddleware, optionalAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public browsing. Optional auth lets creators see their own
	// pending campaigns through the detail endpoint.
	r.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", h.List)
		r.Get("/stats", h.Stats)
		r.Get("/{id}", h.GetByID)
		r.Get("/{id}/updates", h.ListUpdates)
	})

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/my", h.ListMine)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Post("/{id}/submit", h.Submit)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/cover", h.UploadCover)
		r.Post("/{id}/updates", h.PostUpdate)
	})

	return r
}
