package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository stores review audit notes and dashboard aggregates
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateCampaignNote(ctx context.Context, n *CampaignNote) error {
	query := `
		INSERT INTO campaign_notes (id, campaign_id, admin_id, action, note)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.CampaignID, n.AdminID, n.Action, n.Note)
	return err
}

func (r *Repository) ListCampaignNotes(ctx context.Context, campaignID uuid.UUID) ([]CampaignNote, error) {
	query := `
		SELECT id, campaign_id, admin_id, action, note, created_at
		FROM campaign_notes
		WHERE campaign_id = $1
		ORDER BY created_at DESC
	`
	notes := []CampaignNote{}
	err := r.db.SelectContext(ctx, &notes, query, campaignID)
	return notes, err
}

func (r *Repository) CreateTransactionNote(ctx context.Context, n *TransactionNote) error {
	query := `
		INSERT INTO transaction_notes (id, transaction_id, admin_id, action, note)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.TransactionID, n.AdminID, n.Action, n.Note)
	return err
}

func (r *Repository) ListTransactionNotes(ctx context.Context, transactionID uuid.UUID) ([]TransactionNote, error) {
	query := `
		SELECT id, transaction_id, admin_id, action, note, created_at
		FROM transaction_notes
		WHERE transaction_id = $1
		ORDER BY created_at DESC
	`
	notes := []TransactionNote{}
	err := r.db.SelectContext(ctx, &notes, query, transactionID)
	return notes, err
}

func (r *Repository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM profiles`)
	return count, err
}

// LedgerAggregates summarizes the transactions table for the dashboard
type LedgerAggregates struct {
	TotalTransactions       int   `db:"total_transactions"`
	PendingWithdrawals      int   `db:"pending_withdrawals"`
	PendingWithdrawalAmount int64 `db:"pending_withdrawal_amount"`
}

func (r *Repository) TransactionAggregates(ctx context.Context) (*LedgerAggregates, error) {
	query := `
		SELECT
			COUNT(*) AS total_transactions,
			COUNT(*) FILTER (WHERE type = 'withdrawal' AND status = 'pending') AS pending_withdrawals,
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal' AND status = 'pending'), 0) AS pending_withdrawal_amount
		FROM transactions
	`

	var agg LedgerAggregates
	if err := r.db.GetContext(ctx, &agg, query); err != nil {
		return nil, err
	}
	return &agg, nil
}
