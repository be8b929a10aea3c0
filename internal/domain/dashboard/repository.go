package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Stats represents a user's dashboard summary
type Stats struct {
	CampaignsCreated int   `json:"campaigns_created"`
	ActiveCampaigns  int   `json:"active_campaigns"`
	TotalRaised      int64 `json:"total_raised"`
	CampaignsBacked  int   `json:"campaigns_backed"`
	TotalContributed int64 `json:"total_contributed"`
	WalletBalance    int64 `json:"wallet_balance"`
}

// Repository handles dashboard data aggregation
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates dashboard repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetStats returns aggregated stats for a user. Individual aggregates are
// best effort so a single failing query does not blank the whole dashboard.
func (r *Repository) GetStats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	stats := &Stats{}

	_ = r.db.GetContext(ctx, &stats.CampaignsCreated, `
		SELECT COUNT(*) FROM campaigns WHERE creator_id = $1
	`, userID)

	_ = r.db.GetContext(ctx, &stats.ActiveCampaigns, `
		SELECT COUNT(*) FROM campaigns WHERE creator_id = $1 AND status = 'active'
	`, userID)

	_ = r.db.GetContext(ctx, &stats.TotalRaised, `
		SELECT COALESCE(SUM(current_amount), 0) FROM campaigns WHERE creator_id = $1
	`, userID)

	_ = r.db.GetContext(ctx, &stats.CampaignsBacked, `
		SELECT COUNT(DISTINCT campaign_id) FROM contributions
		WHERE user_id = $1 AND refunded_at IS NULL
	`, userID)

	_ = r.db.GetContext(ctx, &stats.TotalContributed, `
		SELECT COALESCE(SUM(amount), 0) FROM contributions
		WHERE user_id = $1 AND refunded_at IS NULL
	`, userID)

	_ = r.db.GetContext(ctx, &stats.WalletBalance, `
		SELECT COALESCE(balance, 0) FROM wallets WHERE user_id = $1
	`, userID)

	return stats, nil
}
