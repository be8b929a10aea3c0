package contribution

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how a contribution was paid
type PaymentMethod string

const (
	PaymentMethodKhalti PaymentMethod = "khalti"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// Contribution represents a pledge to a campaign. Amounts are in minor
// currency units. Reference carries the gateway payment id (or a generated
// id for wallet payments) and makes recording idempotent.
type Contribution struct {
	ID            uuid.UUID     `db:"id"`
	CampaignID    uuid.UUID     `db:"campaign_id"`
	UserID        uuid.UUID     `db:"user_id"`
	Amount        int64         `db:"amount"`
	PaymentMethod PaymentMethod `db:"payment_method"`
	Reference     string        `db:"reference"`
	Anonymous     bool          `db:"anonymous"`
	RefundedAt    sql.NullTime  `db:"refunded_at"`
	CreatedAt     time.Time     `db:"created_at"`

	// Joined for read paths
	BackerName    string `db:"backer_name"`
	CampaignTitle string `db:"campaign_title"`
}
