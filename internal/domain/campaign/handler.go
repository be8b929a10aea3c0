package campaign

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/middleware"
	"github.com/fundhive/fundhive-api/internal/pkg/imaging"
	"github.com/fundhive/fundhive-api/internal/pkg/response"
	"github.com/fundhive/fundhive-api/internal/pkg/validator"
)

// Handler handles campaign HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates campaign handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// publicStatuses are the only states visible on the browse endpoints
var publicStatuses = map[Status]bool{
	StatusActive: true,
	StatusFunded: true,
	StatusFailed: true,
}

// Create handles POST /campaigns
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	c, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDeadlineInPast):
			response.BadRequest(w, "Deadline must be in the future")
		case errors.Is(err, ErrDeadlineBeforeStart):
			response.BadRequest(w, "Deadline must be after the start date")
		case errors.Is(err, ErrInvalidCreatorRef):
			response.BadRequest(w, "Creator profile does not exist")
		case errors.Is(err, ErrCampaignConstraint):
			response.BadRequest(w, "Campaign data violates a constraint")
		default:
			response.InternalError(w)
		}
		return
	}

	response.Created(w, c.ToResponse())
}

// List handles GET /campaigns
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &Filter{}

	if q := query.Get("q"); q != "" {
		filter.Query = &q
	}
	if cat := query.Get("category"); cat != "" {
		filter.Category = &cat
	}
	if st := query.Get("status"); st != "" {
		status := Status(st)
		if !publicStatuses[status] {
			response.BadRequest(w, "Invalid status filter")
			return
		}
		filter.Status = &status
	}

	sortBy := SortBy(query.Get("sort"))
	pagination := parsePagination(query.Get("page"), query.Get("limit"))

	campaigns, total, err := h.service.List(r.Context(), filter, sortBy, pagination)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, ToResponseList(campaigns), paginationMeta(total, pagination))
}

// Stats handles GET /campaigns/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"total_campaigns":   stats.TotalCampaigns,
		"active_campaigns":  stats.ActiveCampaigns,
		"pending_campaigns": stats.PendingCampaigns,
		"funded_campaigns":  stats.FundedCampaigns,
		"total_raised":      stats.TotalRaised,
	})
}

// ListMine handles GET /campaigns/my
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	query := r.URL.Query()

	// The owner sees every state, including drafts under review.
	filter := &Filter{CreatorID: &userID}
	if st := query.Get("status"); st != "" {
		status := Status(st)
		filter.Status = &status
	}

	pagination := parsePagination(query.Get("page"), query.Get("limit"))

	campaigns, total, err := h.service.List(r.Context(), filter, SortByNewest, pagination)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, ToResponseList(campaigns), paginationMeta(total, pagination))
}

// GetByID handles GET /campaigns/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	c, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			response.NotFound(w, "Campaign not found")
			return
		}
		response.InternalError(w)
		return
	}

	// Drafts and pending campaigns are only visible to their creator and admins.
	if !publicStatuses[c.Status] {
		userID := middleware.GetUserID(r.Context())
		if userID != c.CreatorID && !middleware.GetIsAdmin(r.Context()) {
			response.NotFound(w, "Campaign not found")
			return
		}
	}

	response.OK(w, c.ToResponse())
}

// Update handles PUT /campaigns/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	var req UpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	c, err := h.service.Update(r.Context(), userID, id, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, c.ToResponse())
}

// Submit handles POST /campaigns/{id}/submit
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	c, err := h.service.Submit(r.Context(), userID, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, c.ToResponse())
}

// Delete handles DELETE /campaigns/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.NoContent(w)
}

// UploadCover handles POST /campaigns/{id}/cover (multipart form, field "cover")
func (h *Handler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	if err := r.ParseMultipartForm(imaging.MaxFileSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("cover")
	if err != nil {
		response.BadRequest(w, "Missing cover file")
		return
	}
	defer file.Close()

	if header.Size > imaging.MaxFileSize {
		response.BadRequest(w, "File too large (max 10MB)")
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.service.UploadCover(r.Context(), userID, id, file, header.Filename)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.OK(w, result)
}

// PostUpdate handles POST /campaigns/{id}/updates
func (h *Handler) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	var req PostUpdateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	u, err := h.service.PostUpdate(r.Context(), userID, id, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	response.Created(w, u.ToUpdateResponse())
}

// ListUpdates handles GET /campaigns/{id}/updates
func (h *Handler) ListUpdates(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid campaign ID")
		return
	}

	updates, err := h.service.ListUpdates(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			response.NotFound(w, "Campaign not found")
			return
		}
		response.InternalError(w)
		return
	}

	out := make([]*UpdateResponse, 0, len(updates))
	for _, u := range updates {
		out = append(out, u.ToUpdateResponse())
	}
	response.OK(w, out)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrCampaignNotFound):
		response.NotFound(w, "Campaign not found")
	case errors.Is(err, ErrNotCreator):
		response.Forbidden(w, "Only the campaign creator can do this")
	case errors.Is(err, ErrNotEditable):
		response.Conflict(w, "Campaign can no longer be edited")
	case errors.Is(err, ErrGoalImmutable):
		response.Conflict(w, "Goal and deadline are locked once a campaign is active")
	case errors.Is(err, ErrHasContributions):
		response.Conflict(w, "Campaigns with contributions cannot be deleted")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "Campaign is not in a state that allows this")
	case errors.Is(err, ErrDeadlineInPast):
		response.BadRequest(w, "Deadline must be in the future")
	case errors.Is(err, ErrDeadlineBeforeStart):
		response.BadRequest(w, "Deadline must be after the start date")
	case errors.Is(err, ErrNotActive):
		response.Conflict(w, "Campaign is not active")
	case errors.Is(err, ErrInvalidImage):
		response.BadRequest(w, "Unsupported or corrupt image file")
	default:
		response.InternalError(w)
	}
}

func parsePagination(pageStr, limitStr string) *Pagination {
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
	return &Pagination{Page: page, Limit: limit}
}

func paginationMeta(total int, p *Pagination) response.Meta {
	return response.Meta{
		Total:   total,
		Page:    p.Page,
		Limit:   p.Limit,
		Pages:   (total + p.Limit - 1) / p.Limit,
		HasNext: p.Page*p.Limit < total,
		HasPrev: p.Page > 1,
	}
}
