package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fundhive/fundhive-api/internal/middleware"
	"github.com/fundhive/fundhive-api/internal/pkg/imaging"
	"github.com/fundhive/fundhive-api/internal/pkg/response"
	"github.com/fundhive/fundhive-api/internal/pkg/validator"
)

// Handler handles profile HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates profile handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetMe handles GET /users/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if err == ErrUserNotFound {
			response.NotFound(w, "Profile not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, profile.ToResponse())
}

// UpdateMe handles PUT /users/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	userID := middleware.GetUserID(r.Context())
	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if err == ErrUserNotFound {
			response.NotFound(w, "Profile not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, profile.ToResponse())
}

// UploadAvatar handles POST /users/me/avatar (multipart form, field "avatar")
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(imaging.MaxFileSize); err != nil {
		response.BadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		response.BadRequest(w, "Missing avatar file")
		return
	}
	defer file.Close()

	if header.Size > imaging.MaxFileSize {
		response.BadRequest(w, "File too large (max 10MB)")
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.service.UploadAvatar(r.Context(), userID, file, header.Filename)
	if err != nil {
		switch err {
		case ErrInvalidImage:
			response.BadRequest(w, "Unsupported or corrupt image file")
		case ErrUserNotFound:
			response.NotFound(w, "Profile not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, result)
}

// GetByID handles GET /users/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		if err == ErrUserNotFound {
			response.NotFound(w, "User not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, profile.ToPublicResponse())
}
