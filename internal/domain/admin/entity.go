package admin

import (
	"time"

	"github.com/google/uuid"
)

// Action is a review decision
type Action string

const (
	ActionApprove        Action = "approve"
	ActionReject         Action = "reject"
	ActionRequestChanges Action = "request_changes"
)

// CampaignNote is an audit note attached to a campaign review decision
type CampaignNote struct {
	ID         uuid.UUID `db:"id" json:"id"`
	CampaignID uuid.UUID `db:"campaign_id" json:"campaign_id"`
	AdminID    uuid.UUID `db:"admin_id" json:"admin_id"`
	Action     string    `db:"action" json:"action"`
	Note       string    `db:"note" json:"note"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TransactionNote is an audit note attached to a transaction review decision
type TransactionNote struct {
	ID            uuid.UUID `db:"id" json:"id"`
	TransactionID uuid.UUID `db:"transaction_id" json:"transaction_id"`
	AdminID       uuid.UUID `db:"admin_id" json:"admin_id"`
	Action        string    `db:"action" json:"action"`
	Note          string    `db:"note" json:"note"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// PlatformStats aggregates the dashboard numbers
type PlatformStats struct {
	TotalUsers              int     `json:"total_users"`
	TotalCampaigns          int     `json:"total_campaigns"`
	ActiveCampaigns         int     `json:"active_campaigns"`
	PendingCampaigns        int     `json:"pending_campaigns"`
	FundedCampaigns         int     `json:"funded_campaigns"`
	FailedCampaigns         int     `json:"failed_campaigns"`
	TotalRaised             int64   `json:"total_raised"`
	TotalTransactions       int     `json:"total_transactions"`
	PendingWithdrawals      int     `json:"pending_withdrawals"`
	PendingWithdrawalAmount int64   `json:"pending_withdrawal_amount"`
	SuccessRate             float64 `json:"success_rate"`
}
