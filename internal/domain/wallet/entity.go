package wallet

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeWithdrawal   TransactionType = "withdrawal"
	TransactionTypeContribution TransactionType = "contribution"
	TransactionTypeRefund       TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Wallet holds a user's spendable balance in minor currency units.
type Wallet struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Balance   int64     `db:"balance" json:"balance"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is a ledger row. Amounts are always positive; the type
// determines direction. Only withdrawals are ever pending.
type Transaction struct {
	ID            uuid.UUID         `db:"id" json:"id"`
	UserID        uuid.UUID         `db:"user_id" json:"user_id"`
	CampaignID    uuid.NullUUID     `db:"campaign_id" json:"campaign_id,omitempty"`
	Type          TransactionType   `db:"type" json:"type"`
	Amount        int64             `db:"amount" json:"amount"`
	Status        TransactionStatus `db:"status" json:"status"`
	PaymentMethod sql.NullString    `db:"payment_method" json:"payment_method,omitempty"`
	Reference     sql.NullString    `db:"reference" json:"reference,omitempty"`
	Description   sql.NullString    `db:"description" json:"description,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// delta returns the signed balance effect of a completed row of this type.
func delta(txType TransactionType, amount int64) int64 {
	switch txType {
	case TransactionTypeDeposit, TransactionTypeRefund:
		return amount
	default:
		return -amount
	}
}
