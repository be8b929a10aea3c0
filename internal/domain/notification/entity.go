package notification

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type represents notification type
type Type string

const (
	TypeContribution   Type = "contribution"    // Creator: someone backed the campaign
	TypeCampaignUpdate Type = "campaign_update" // Backer: creator posted an update
	TypeSystem         Type = "system"          // Review outcomes, finalization, withdrawals
)

// Notification represents a user notification
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      Type            `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Body      sql.NullString  `db:"body" json:"body,omitempty"`
	Data      json.RawMessage `db:"data" json:"data,omitempty"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	ReadAt    sql.NullTime    `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationData links a notification to the entities it is about
type NotificationData struct {
	CampaignID     *uuid.UUID `json:"campaign_id,omitempty"`
	ContributionID *uuid.UUID `json:"contribution_id,omitempty"`
	TransactionID  *uuid.UUID `json:"transaction_id,omitempty"`
	UpdateID       *uuid.UUID `json:"update_id,omitempty"`
	Amount         *int64     `json:"amount,omitempty"`
}

// SetData encodes data to JSON
func (n *Notification) SetData(data *NotificationData) {
	if data != nil {
		n.Data, _ = json.Marshal(data)
	}
}

// GetData decodes data from JSON
func (n *Notification) GetData() *NotificationData {
	if n.Data == nil {
		return &NotificationData{}
	}
	var data NotificationData
	_ = json.Unmarshal(n.Data, &data)
	return &data
}
