package contribution

import (
	"time"

	"github.com/google/uuid"
)

// ContributeRequest for POST /contributions
type ContributeRequest struct {
	CampaignID    uuid.UUID `json:"campaign_id" validate:"required"`
	Amount        int64     `json:"amount" validate:"required,gt=0"`
	PaymentMethod string    `json:"payment_method" validate:"required,payment_method"`
	Anonymous     bool      `json:"anonymous"`
}

// Response is the public view of a contribution
type Response struct {
	ID            uuid.UUID `json:"id"`
	CampaignID    uuid.UUID `json:"campaign_id"`
	CampaignTitle string    `json:"campaign_title,omitempty"`
	BackerName    string    `json:"backer_name,omitempty"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Refunded      bool      `json:"refunded"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts a contribution, hiding the backer when anonymous
func (c *Contribution) ToResponse() *Response {
	name := c.BackerName
	if c.Anonymous {
		name = "Anonymous"
	}
	return &Response{
		ID:            c.ID,
		CampaignID:    c.CampaignID,
		CampaignTitle: c.CampaignTitle,
		BackerName:    name,
		Amount:        c.Amount,
		PaymentMethod: string(c.PaymentMethod),
		Refunded:      c.RefundedAt.Valid,
		CreatedAt:     c.CreatedAt,
	}
}

// ToResponseList converts a slice of contributions
func ToResponseList(contributions []Contribution) []*Response {
	out := make([]*Response, 0, len(contributions))
	for i := range contributions {
		out = append(out, contributions[i].ToResponse())
	}
	return out
}
