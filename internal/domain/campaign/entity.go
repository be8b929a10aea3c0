package campaign

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents campaign lifecycle state (matches campaign_status enum)
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusFunded  Status = "funded"
	StatusFailed  Status = "failed"
)

// validTransitions maps each status to the states it may move into.
// Admin review moves pending and active campaigns; the finalizer moves
// active ones into their terminal state.
var validTransitions = map[Status][]Status{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusActive, StatusDraft},
	StatusActive:  {StatusFunded, StatusFailed, StatusDraft},
}

// CanTransition reports whether moving from -> to is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Campaign represents a crowdfunding campaign. Monetary amounts are in
// minor currency units.
type Campaign struct {
	ID            uuid.UUID      `db:"id"`
	CreatorID     uuid.UUID      `db:"creator_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Category      string         `db:"category"`
	GoalAmount    int64          `db:"goal_amount"`
	CurrentAmount int64          `db:"current_amount"`
	BackersCount  int            `db:"backers_count"`
	Status        Status         `db:"status"`
	CoverImageURL sql.NullString `db:"cover_image_url"`
	CoverThumbURL sql.NullString `db:"cover_thumb_url"`
	StartDate     time.Time      `db:"start_date"`
	Deadline      time.Time      `db:"deadline"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`

	// Joined from profiles for read paths
	CreatorName string `db:"creator_name"`
}

// Update is a progress post by the campaign creator
type Update struct {
	ID         uuid.UUID `db:"id"`
	CampaignID uuid.UUID `db:"campaign_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
}

// IsEditable reports whether the creator may still change core fields
func (c *Campaign) IsEditable() bool {
	return c.Status == StatusDraft || c.Status == StatusPending
}

// IsFinished reports whether the campaign reached a terminal state
func (c *Campaign) IsFinished() bool {
	return c.Status == StatusFunded || c.Status == StatusFailed
}

// PercentFunded returns funding progress as a percentage
func (c *Campaign) PercentFunded() float64 {
	if c.GoalAmount <= 0 {
		return 0
	}
	return float64(c.CurrentAmount) / float64(c.GoalAmount) * 100
}
