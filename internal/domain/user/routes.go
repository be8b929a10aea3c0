package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns user router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/{id}", h.GetByID)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", h.GetMe)
		r.Put("/me", h.UpdateMe)
		r.Post("/me/avatar", h.UploadAvatar)
	})

	return r
}
