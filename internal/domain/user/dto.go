package user

import (
	"time"

	"github.com/google/uuid"
)

// UpdateProfileRequest for PUT /users/me
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Bio      string `json:"bio" validate:"max=2000"`
}

// ProfileResponse is the owner's view of a profile
type ProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	AvatarThumbURL string    `json:"avatar_thumb_url,omitempty"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

// PublicProfileResponse is what other users see
type PublicProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	AvatarThumbURL string    `json:"avatar_thumb_url,omitempty"`
	JoinedAt       time.Time `json:"joined_at"`
}

// AvatarResponse returned after avatar upload
type AvatarResponse struct {
	AvatarURL      string `json:"avatar_url"`
	AvatarThumbURL string `json:"avatar_thumb_url"`
}

// ToResponse converts profile to owner response
func (p *Profile) ToResponse() *ProfileResponse {
	return &ProfileResponse{
		ID:             p.ID,
		Email:          p.Email,
		FullName:       p.FullName,
		Bio:            p.Bio.String,
		AvatarURL:      p.AvatarURL.String,
		AvatarThumbURL: p.AvatarThumbURL.String,
		IsAdmin:        p.IsAdmin,
		CreatedAt:      p.CreatedAt,
	}
}

// ToPublicResponse converts profile to public response
func (p *Profile) ToPublicResponse() *PublicProfileResponse {
	return &PublicProfileResponse{
		ID:             p.ID,
		FullName:       p.FullName,
		Bio:            p.Bio.String,
		AvatarURL:      p.AvatarURL.String,
		AvatarThumbURL: p.AvatarThumbURL.String,
		JoinedAt:       p.CreatedAt,
	}
}
