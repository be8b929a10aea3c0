package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/middleware"
	"github.com/fundhive/fundhive-api/internal/pkg/response"
)

// Handler handles dashboard HTTP requests
type Handler struct {
	repo *Repository
}

// NewHandler creates dashboard handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetStats handles GET /dashboard
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	stats, err := h.repo.GetStats(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, stats)
}

// Routes returns dashboard routes
func Routes(h *Handler, authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.GetStats)

	return r
}
