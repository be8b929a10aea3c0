package contribution

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fundhive/fundhive-api/internal/domain/wallet"
)

// RecordParams describes a contribution to record. The caller has already
// collected the money (gateway) or expects the wallet to be debited in the
// same transaction.
type RecordParams struct {
	CampaignID    uuid.UUID
	UserID        uuid.UUID
	Amount        int64
	PaymentMethod PaymentMethod
	Reference     string
	Anonymous     bool
}

type Repository struct {
	db         *sqlx.DB
	walletRepo *wallet.Repository
}

func NewRepository(db *sqlx.DB, walletRepo *wallet.Repository) *Repository {
	return &Repository{db: db, walletRepo: walletRepo}
}

// Record writes the contribution, bumps the campaign counters and adds the
// ledger entry in one transaction. This is the only code path that moves
// current_amount, so the campaign total always equals the sum of its
// contributions. Retries with the same reference are no-ops.
func (r *Repository) Record(ctx context.Context, p RecordParams) (*Contribution, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Idempotency: the reference was already recorded.
	existing, err := r.getByReference(ctx, tx, p.Reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, ErrDuplicateReference
	}

	// Wallet payments debit the balance in this same transaction.
	// Gateway payments only get a ledger row.
	ledger := wallet.ApplyParams{
		UserID:        p.UserID,
		CampaignID:    uuid.NullUUID{UUID: p.CampaignID, Valid: true},
		Type:          wallet.TransactionTypeContribution,
		Status:        wallet.TransactionStatusCompleted,
		Amount:        p.Amount,
		PaymentMethod: string(p.PaymentMethod),
		Reference:     p.Reference,
		Description:   "Campaign contribution",
	}
	if p.PaymentMethod == PaymentMethodWallet {
		_, err = r.walletRepo.ApplyTx(ctx, tx, ledger)
	} else {
		// Gateway payments never touch the balance, but still take the
		// wallet row lock so concurrent first-time payments by the same
		// user cannot both pass the prior-backer check below.
		if err = r.walletRepo.LockTx(ctx, tx, p.UserID); err == nil {
			_, err = r.walletRepo.RecordTx(ctx, tx, ledger)
		}
	}
	if err != nil {
		return nil, err
	}

	// First pledge by this user counts as a new backer.
	var priorBacker bool
	if err := tx.GetContext(ctx, &priorBacker, `
		SELECT EXISTS (
			SELECT 1 FROM contributions WHERE campaign_id = $1 AND user_id = $2
		)
	`, p.CampaignID, p.UserID); err != nil {
		return nil, err
	}

	c := &Contribution{
		ID:            uuid.New(),
		CampaignID:    p.CampaignID,
		UserID:        p.UserID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Reference:     p.Reference,
		Anonymous:     p.Anonymous,
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO contributions (id, campaign_id, user_id, amount, payment_method, reference, anonymous)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.CampaignID, c.UserID, c.Amount, string(c.PaymentMethod), c.Reference, c.Anonymous); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateReference
		}
		return nil, err
	}

	// The campaign must still be live. The guard races cleanly with the
	// finalizer: a finalized campaign takes no more money.
	backerIncrement := 0
	if !priorBacker {
		backerIncrement = 1
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE campaigns
		SET current_amount = current_amount + $2,
		    backers_count = backers_count + $3,
		    updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND deadline > NOW()
	`, p.CampaignID, p.Amount, backerIncrement)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrCampaignNotActive
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return c, nil
}

func (r *Repository) getByReference(ctx context.Context, q sqlx.QueryerContext, reference string) (*Contribution, error) {
	if reference == "" {
		return nil, nil
	}

	var c Contribution
	err := sqlx.GetContext(ctx, q, &c, `
		SELECT id, campaign_id, user_id, amount, payment_method, reference, anonymous, refunded_at, created_at,
		       '' AS backer_name, '' AS campaign_title
		FROM contributions
		WHERE reference = $1
	`, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByReference returns a contribution by its payment reference.
func (r *Repository) GetByReference(ctx context.Context, reference string) (*Contribution, error) {
	return r.getByReference(ctx, r.db, reference)
}

// ListByCampaign returns a campaign's contributions newest first.
func (r *Repository) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]Contribution, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM contributions WHERE campaign_id = $1`, campaignID); err != nil {
		return nil, 0, err
	}

	out := []Contribution{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT c.id, c.campaign_id, c.user_id, c.amount, c.payment_method, c.reference, c.anonymous, c.refunded_at, c.created_at,
		       COALESCE(p.full_name, '') AS backer_name,
		       '' AS campaign_title
		FROM contributions c
		LEFT JOIN profiles p ON p.id = c.user_id
		WHERE c.campaign_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`, campaignID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// ListByUser returns a user's contributions with campaign titles.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Contribution, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM contributions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	out := []Contribution{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT c.id, c.campaign_id, c.user_id, c.amount, c.payment_method, c.reference, c.anonymous, c.refunded_at, c.created_at,
		       '' AS backer_name,
		       COALESCE(cp.title, '') AS campaign_title
		FROM contributions c
		LEFT JOIN campaigns cp ON cp.id = c.campaign_id
		WHERE c.user_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

// ListBackerIDs returns the distinct users who backed a campaign.
func (r *Repository) ListBackerIDs(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids,
		`SELECT DISTINCT user_id FROM contributions WHERE campaign_id = $1`, campaignID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ListUnrefundedCampaignIDs returns failed campaigns that still owe their
// backers a refund.
func (r *Repository) ListUnrefundedCampaignIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT c.campaign_id
		FROM contributions c
		JOIN campaigns cp ON cp.id = c.campaign_id
		WHERE cp.status = 'failed' AND c.refunded_at IS NULL
	`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// RefundCampaign credits every unrefunded contribution back to its backer's
// wallet. Each contribution is refunded in its own transaction so a crash
// mid-way resumes cleanly; refund references make retries idempotent.
func (r *Repository) RefundCampaign(ctx context.Context, campaignID uuid.UUID) (int, error) {
	pending := []Contribution{}
	err := r.db.SelectContext(ctx, &pending, `
		SELECT id, campaign_id, user_id, amount, payment_method, reference, anonymous, refunded_at, created_at,
		       '' AS backer_name, '' AS campaign_title
		FROM contributions
		WHERE campaign_id = $1 AND refunded_at IS NULL
		ORDER BY created_at ASC
	`, campaignID)
	if err != nil {
		return 0, err
	}

	refunded := 0
	for _, c := range pending {
		if err := r.refundOne(ctx, &c); err != nil {
			return refunded, fmt.Errorf("refund contribution %s: %w", c.ID, err)
		}
		refunded++
	}

	return refunded, nil
}

func (r *Repository) refundOne(ctx context.Context, c *Contribution) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = r.walletRepo.ApplyTx(ctx, tx, wallet.ApplyParams{
		UserID:      c.UserID,
		CampaignID:  uuid.NullUUID{UUID: c.CampaignID, Valid: true},
		Type:        wallet.TransactionTypeRefund,
		Status:      wallet.TransactionStatusCompleted,
		Amount:      c.Amount,
		Reference:   "refund_" + c.ID.String(),
		Description: "Contribution refund",
	})
	if err != nil && !errors.Is(err, wallet.ErrDuplicateReference) {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE contributions SET refunded_at = NOW() WHERE id = $1 AND refunded_at IS NULL`,
		c.ID,
	); err != nil {
		return err
	}

	return tx.Commit()
}
