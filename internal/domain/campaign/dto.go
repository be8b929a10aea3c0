package campaign

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /campaigns
type CreateRequest struct {
	Title       string     `json:"title" validate:"required,min=5,max=200"`
	Description string     `json:"description" validate:"required,min=20,max=10000"`
	Category    string     `json:"category" validate:"required,category"`
	GoalAmount  int64      `json:"goal_amount" validate:"required,gt=0"`
	StartDate   *time.Time `json:"start_date"`
	Deadline    time.Time  `json:"deadline" validate:"required"`
}

// UpdateRequest for PUT /campaigns/{id}
type UpdateRequest struct {
	Title       string     `json:"title" validate:"omitempty,min=5,max=200"`
	Description string     `json:"description" validate:"omitempty,min=20,max=10000"`
	Category    string     `json:"category" validate:"omitempty,category"`
	GoalAmount  *int64     `json:"goal_amount" validate:"omitempty,gt=0"`
	Deadline    *time.Time `json:"deadline"`
}

// PostUpdateRequest for POST /campaigns/{id}/updates
type PostUpdateRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Content string `json:"content" validate:"required,min=10,max=10000"`
}

// Response is the public campaign view
type Response struct {
	ID            uuid.UUID `json:"id"`
	CreatorID     uuid.UUID `json:"creator_id"`
	CreatorName   string    `json:"creator_name,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	GoalAmount    int64     `json:"goal_amount"`
	CurrentAmount int64     `json:"current_amount"`
	BackersCount  int       `json:"backers_count"`
	PercentFunded float64   `json:"percent_funded"`
	Status        Status    `json:"status"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	CoverThumbURL string    `json:"cover_thumb_url,omitempty"`
	StartDate     time.Time `json:"start_date"`
	Deadline      time.Time `json:"deadline"`
	CreatedAt     time.Time `json:"created_at"`
}

// UpdateResponse is a single progress post
type UpdateResponse struct {
	ID         uuid.UUID `json:"id"`
	CampaignID uuid.UUID `json:"campaign_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// CoverResponse returned after cover upload
type CoverResponse struct {
	CoverImageURL string `json:"cover_image_url"`
	CoverThumbURL string `json:"cover_thumb_url"`
}

// ToResponse converts a campaign to its public view
func (c *Campaign) ToResponse() *Response {
	return &Response{
		ID:            c.ID,
		CreatorID:     c.CreatorID,
		CreatorName:   c.CreatorName,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		GoalAmount:    c.GoalAmount,
		CurrentAmount: c.CurrentAmount,
		BackersCount:  c.BackersCount,
		PercentFunded: c.PercentFunded(),
		Status:        c.Status,
		CoverImageURL: c.CoverImageURL.String,
		CoverThumbURL: c.CoverThumbURL.String,
		StartDate:     c.StartDate,
		Deadline:      c.Deadline,
		CreatedAt:     c.CreatedAt,
	}
}

// ToUpdateResponse converts a progress post
func (u *Update) ToUpdateResponse() *UpdateResponse {
	return &UpdateResponse{
		ID:         u.ID,
		CampaignID: u.CampaignID,
		Title:      u.Title,
		Content:    u.Content,
		CreatedAt:  u.CreatedAt,
	}
}

// ToResponseList converts a slice of campaigns
func ToResponseList(campaigns []*Campaign) []*Response {
	out := make([]*Response, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, c.ToResponse())
	}
	return out
}
