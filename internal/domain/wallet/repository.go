package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ApplyParams describes a single ledger entry. Amount is always positive;
// Type decides whether the balance is credited or debited.
type ApplyParams struct {
	UserID        uuid.UUID
	CampaignID    uuid.NullUUID
	Type          TransactionType
	Status        TransactionStatus
	Amount        int64
	PaymentMethod string
	Reference     string
	Description   string
}

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateForUser opens an empty wallet. Safe to call twice.
func (r *Repository) CreateForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID)
	return err
}

func (r *Repository) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	if err := r.CreateForUser(ctx, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := r.db.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1`, userID)
	return balance, err
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *Repository) lockWallet(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (int64, error) {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return 0, err
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID)
	return balance, err
}

// LockTx takes the user's wallet row lock inside the caller's transaction
// without touching the balance. Serializes per-user work that spans other
// tables.
func (r *Repository) LockTx(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) error {
	_, err := r.lockWallet(ctx, tx, userID)
	return err
}

func (r *Repository) getTransactionAmountByRef(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, txType TransactionType, reference string) (int64, bool, error) {
	if reference == "" {
		return 0, false, nil
	}

	var amount int64
	err := tx.GetContext(ctx, &amount, `
		SELECT amount
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND reference = $3
		LIMIT 1
	`, userID, string(txType), reference)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func (r *Repository) updateBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, balance int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE wallets SET balance = $1, updated_at = now() WHERE user_id = $2`, balance, userID)
	return err
}

func (r *Repository) insertTransaction(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, p ApplyParams) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, campaign_id, type, amount, status, payment_method, reference, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, id, p.UserID, p.CampaignID, string(p.Type), p.Amount, string(p.Status),
		nullString(p.PaymentMethod), nullString(p.Reference), nullString(p.Description))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// ApplyTx records a ledger entry and adjusts the balance inside the caller's
// transaction. Entries with a reference are idempotent: a retry with the same
// reference and amount is a no-op, a different amount is a conflict.
func (r *Repository) ApplyTx(ctx context.Context, tx *sqlx.Tx, p ApplyParams) (uuid.UUID, error) {
	balance, err := r.lockWallet(ctx, tx, p.UserID)
	if err != nil {
		return uuid.Nil, err
	}

	existingAmount, exists, err := r.getTransactionAmountByRef(ctx, tx, p.UserID, p.Type, p.Reference)
	if err != nil {
		return uuid.Nil, err
	}
	if exists {
		if existingAmount != p.Amount {
			return uuid.Nil, ErrReferenceConflict
		}
		return uuid.Nil, ErrDuplicateReference
	}

	nextBalance := balance + delta(p.Type, p.Amount)
	if nextBalance < 0 {
		return uuid.Nil, ErrInsufficientFunds
	}

	if err := r.updateBalance(ctx, tx, p.UserID, nextBalance); err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	if err := r.insertTransaction(ctx, tx, id, p); err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

// RecordTx inserts a ledger row inside the caller's transaction without
// touching any balance. Used for gateway-funded entries where the money
// never passes through the wallet.
func (r *Repository) RecordTx(ctx context.Context, tx *sqlx.Tx, p ApplyParams) (uuid.UUID, error) {
	existingAmount, exists, err := r.getTransactionAmountByRef(ctx, tx, p.UserID, p.Type, p.Reference)
	if err != nil {
		return uuid.Nil, err
	}
	if exists {
		if existingAmount != p.Amount {
			return uuid.Nil, ErrReferenceConflict
		}
		return uuid.Nil, ErrDuplicateReference
	}

	id := uuid.New()
	if err := r.insertTransaction(ctx, tx, id, p); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// DB exposes the underlying handle so sibling repositories can open a
// transaction that spans wallet and campaign tables.
func (r *Repository) DB() *sqlx.DB {
	return r.db
}

// Apply runs ApplyTx in its own transaction.
func (r *Repository) Apply(ctx context.Context, p ApplyParams) (uuid.UUID, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	id, err := r.ApplyTx(ctx, tx, p)
	if err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			// Idempotent retry: keep the original row.
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	return id, tx.Commit()
}

// RecordFailed stores a failed ledger row without touching the balance.
// Used for declined gateway payments so the attempt still shows in history.
func (r *Repository) RecordFailed(ctx context.Context, p ApplyParams) (uuid.UUID, error) {
	p.Status = TransactionStatusFailed

	tx, err := r.beginTx(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	id := uuid.New()
	if err := r.insertTransaction(ctx, tx, id, p); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	return id, tx.Commit()
}

// RequestWithdrawal records a pending withdrawal. The balance is untouched
// until an admin approves it, so a request may exceed the current balance;
// the sufficiency check happens at approval time.
func (r *Repository) RequestWithdrawal(ctx context.Context, userID uuid.UUID, amount int64) (*Transaction, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	id, err := r.RecordTx(ctx, tx, ApplyParams{
		UserID:    userID,
		Type:      TransactionTypeWithdrawal,
		Status:    TransactionStatusPending,
		Amount:    amount,
		Reference: "wd_" + uuid.New().String(),
	})
	if err != nil {
		return nil, err
	}

	rec, err := r.getTransaction(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	return rec, tx.Commit()
}

// ReviewWithdrawal finalizes a pending withdrawal. Approval re-locks the
// wallet, re-checks sufficiency and debits the balance; on insufficient funds
// the transaction stays pending. Rejection marks it failed with no balance
// change.
func (r *Repository) ReviewWithdrawal(ctx context.Context, txID uuid.UUID, approve bool) (*Transaction, error) {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rec, err := r.getTransactionForUpdate(ctx, tx, txID)
	if err != nil {
		return nil, err
	}
	if rec.Type != TransactionTypeWithdrawal || rec.Status != TransactionStatusPending {
		return nil, ErrNotPendingWithdrawal
	}

	status := TransactionStatusFailed
	if approve {
		balance, err := r.lockWallet(ctx, tx, rec.UserID)
		if err != nil {
			return nil, err
		}
		if balance-rec.Amount < 0 {
			return nil, ErrInsufficientFunds
		}
		if err := r.updateBalance(ctx, tx, rec.UserID, balance-rec.Amount); err != nil {
			return nil, err
		}
		status = TransactionStatusCompleted
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE transactions SET status = $2, updated_at = now() WHERE id = $1`,
		txID, string(status),
	); err != nil {
		return nil, err
	}
	rec.Status = status
	rec.UpdatedAt = time.Now()

	return rec, tx.Commit()
}

func (r *Repository) getTransaction(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*Transaction, error) {
	var rec Transaction
	err := sqlx.GetContext(ctx, q, &rec, `
		SELECT id, user_id, campaign_id, type, amount, status, payment_method, reference, description, created_at, updated_at
		FROM transactions WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repository) getTransactionForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Transaction, error) {
	var rec Transaction
	err := tx.GetContext(ctx, &rec, `
		SELECT id, user_id, campaign_id, type, amount, status, payment_method, reference, description, created_at, updated_at
		FROM transactions WHERE id = $1
		FOR UPDATE
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetTransaction returns a single ledger row.
func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.getTransaction(ctx, r.db, id)
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	UserID uuid.NullUUID
	Type   TransactionType
	Status TransactionStatus
	Limit  int
	Offset int
}

// ListTransactions returns ledger rows newest first plus the total count.
func (r *Repository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, int, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if filter.UserID.Valid {
		where = append(where, fmt.Sprintf("user_id = $%d", idx))
		args = append(args, filter.UserID.UUID)
		idx++
	}
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("type = $%d", idx))
		args = append(args, string(filter.Type))
		idx++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", idx))
		args = append(args, string(filter.Status))
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM transactions "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, campaign_id, type, amount, status, payment_method, reference, description, created_at, updated_at
		FROM transactions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	txs := []Transaction{}
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, 0, err
	}

	return txs, total, nil
}
