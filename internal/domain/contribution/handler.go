package contribution

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/domain/campaign"
	"github.com/fundhive/fundhive-api/internal/domain/wallet"
	"github.com/fundhive/fundhive-api/internal/middleware"
	"github.com/fundhive/fundhive-api/internal/pkg/response"
	"github.com/fundhive/fundhive-api/internal/pkg/validator"
)

// Handler handles contribution HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates contribution handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Contribute handles POST /contributions
func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	var req ContributeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	rec, err := h.service.Contribute(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			response.BadRequest(w, "Amount must be greater than zero")
		case errors.Is(err, campaign.ErrCampaignNotFound):
			response.NotFound(w, "Campaign not found")
		case errors.Is(err, ErrCampaignNotActive):
			response.Conflict(w, "Campaign is not accepting contributions")
		case errors.Is(err, ErrPaymentFailed):
			response.Error(w, http.StatusPaymentRequired, "PAYMENT_FAILED", "Payment was declined by the gateway")
		case errors.Is(err, wallet.ErrInsufficientFunds):
			response.Conflict(w, "Insufficient wallet balance")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, rec.ToResponse())
}

// ListByCampaign handles GET /contributions/campaign/{id}
func (h *Handler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	page, limit := parsePageLimit(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	contributions, total, err := h.service.ListByCampaign(r.Context(), id, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, ToResponseList(contributions), response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}

// ListMine handles GET /contributions/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, limit := parsePageLimit(r.URL.Query().Get("page"), r.URL.Query().Get("limit"))
	contributions, total, err := h.service.ListMine(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, ToResponseList(contributions), response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	})
}

// Routes returns contribution router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/campaign/{id}", h.ListByCampaign)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.Contribute)
		r.Get("/my", h.ListMine)
	})

	return r
}

func parsePageLimit(pageStr, limitStr string) (int, int) {
	page := 1
	limit := 20
	if pageStr != "" {
		if v, err := strconv.Atoi(pageStr); err == nil && v > 0 {
			page = v
		}
	}
	if limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}
