package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/domain/campaign"
	"github.com/fundhive/fundhive-api/internal/domain/user"
	"github.com/fundhive/fundhive-api/internal/domain/wallet"
	"github.com/fundhive/fundhive-api/internal/middleware"
	"github.com/fundhive/fundhive-api/internal/pkg/response"
	"github.com/fundhive/fundhive-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

// NewHandler creates admin handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Stats handles GET /admin/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, stats)
}

// ListPendingCampaigns handles GET /admin/campaigns
func (h *Handler) ListPendingCampaigns(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	campaigns, total, err := h.svc.ListPendingCampaigns(r.Context(), page, limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, campaign.ToResponseList(campaigns), pageMeta(total, page, limit))
}

// ReviewCampaign handles POST /admin/campaigns/{id}/review
func (h *Handler) ReviewCampaign(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())

	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	var req CampaignReviewRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	c, err := h.svc.ReviewCampaign(r.Context(), adminID, campaignID, Action(req.Action), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrCampaignNotFound):
			response.NotFound(w, "Campaign not found")
		case errors.Is(err, ErrInvalidAction):
			response.BadRequest(w, "Invalid review action")
		case errors.Is(err, ErrNotReviewable):
			response.Conflict(w, "Campaign is not in a reviewable state for this action")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, c.ToResponse())
}

// ListCampaignNotes handles GET /admin/campaigns/{id}/notes
func (h *Handler) ListCampaignNotes(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	notes, err := h.svc.ListCampaignNotes(r.Context(), campaignID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, notes)
}

// ListTransactions handles GET /admin/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, limit := parsePagination(r)

	filter := wallet.TransactionFilter{
		Type:   wallet.TransactionType(query.Get("type")),
		Status: wallet.TransactionStatus(query.Get("status")),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if v := query.Get("user_id"); v != "" {
		userID, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(w, "Invalid user ID filter")
			return
		}
		filter.UserID = uuid.NullUUID{UUID: userID, Valid: true}
	}

	txs, total, err := h.svc.ListTransactions(r.Context(), filter)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, txs, pageMeta(total, page, limit))
}

// ReviewTransaction handles POST /admin/transactions/{id}/review
func (h *Handler) ReviewTransaction(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())

	txID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	var req TransactionReviewRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rec, err := h.svc.ReviewTransaction(r.Context(), adminID, txID, Action(req.Action), req.Note)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrTransactionNotFound):
			response.NotFound(w, "Transaction not found")
		case errors.Is(err, wallet.ErrNotPendingWithdrawal):
			response.Conflict(w, "Transaction is not a pending withdrawal")
		case errors.Is(err, wallet.ErrInsufficientFunds):
			response.Conflict(w, "Insufficient wallet balance for this withdrawal")
		case errors.Is(err, ErrInvalidAction):
			response.BadRequest(w, "Invalid review action")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, rec)
}

// ListTransactionNotes handles GET /admin/transactions/{id}/notes
func (h *Handler) ListTransactionNotes(w http.ResponseWriter, r *http.Request) {
	txID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transaction ID")
		return
	}

	notes, err := h.svc.ListTransactionNotes(r.Context(), txID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, notes)
}

// ListUsers handles GET /admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)

	profiles, total, err := h.svc.ListUsers(r.Context(), limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w)
		return
	}

	out := make([]*user.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, profiles[i].ToResponse())
	}

	response.WithMeta(w, out, pageMeta(total, page, limit))
}

// SetAdmin handles PUT /admin/users/{id}/admin
func (h *Handler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	actorID := middleware.GetUserID(r.Context())

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req SetAdminRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.svc.SetAdmin(r.Context(), actorID, targetID, *req.IsAdmin); err != nil {
		switch {
		case errors.Is(err, ErrCannotDemote):
			response.Conflict(w, "You cannot remove your own admin access")
		case errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"status": "ok"})
}

func parsePagination(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	return page, limit
}

func pageMeta(total, page, limit int) response.Meta {
	return response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   (total + limit - 1) / limit,
		HasNext: page*limit < total,
		HasPrev: page > 1,
	}
}
