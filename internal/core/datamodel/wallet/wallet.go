package wallet

import (
	"time"
)

const (
	TypeCredit = "credit"
	TypeDebit  = "debit"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Transaction is a wallet ledger entry. A credit created for a gateway top-up
// starts pending and carries no balance effect until the reconciliation engine
// commits it.
type Transaction struct {
	ID          int64   `gorm:"primaryKey"`
	UserID      int64   `gorm:"column:user_id;not null;index"`
	Type        string  `gorm:"column:type;not null"`
	Amount      float64 `gorm:"column:amount;not null"`
	Description string  `gorm:"column:description"`
	Method      string  `gorm:"column:method"`
	Status      string  `gorm:"column:status;default:pending;index"`

	// GatewayTxnID mirrors orders.gateway_txn_id: set once at checkout
	// initiation, immutable, unique across wallet transactions.
	GatewayTxnID  *string `gorm:"column:gateway_txn_id;uniqueIndex"`
	ProviderTrxID *string `gorm:"column:provider_trx_id"`

	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) IsTerminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusCancelled
}
