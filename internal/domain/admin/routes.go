package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns admin router. Both middlewares are required: auth resolves
// the caller, requireAdmin re-checks the admin flag against the database.
func (h *Handler) Routes(authMiddleware, requireAdmin func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(requireAdmin)

	r.Get("/stats", h.Stats)

	r.Get("/campaigns", h.ListPendingCampaigns)
	r.Post("/campaigns/{id}/review", h.ReviewCampaign)
	r.Get("/campaigns/{id}/notes", h.ListCampaignNotes)

	r.Get("/transactions", h.ListTransactions)
	r.Post("/transactions/{id}/review", h.ReviewTransaction)
	r.Get("/transactions/{id}/notes", h.ListTransactionNotes)

	r.Get("/users", h.ListUsers)
	r.Put("/users/{id}/admin", h.SetAdmin)

	return r
}
