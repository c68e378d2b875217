package order

import (
	"time"
)

// Order statuses. An order is created pending before the buyer ever reaches the
// gateway, and only the reconciliation engine moves it to a terminal state.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Order struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    int64  `gorm:"column:user_id;not null;index"`
	PackID    *int64 `gorm:"column:pack_id"`
	CardID    *int64 `gorm:"column:card_id"`
	CardName  *string `gorm:"column:card_name"`
	PlayerUID string `gorm:"column:player_uid"`
	ItemName  string `gorm:"column:item_name;not null"`
	Diamonds  int    `gorm:"column:diamonds;default:0"`
	Quantity  int    `gorm:"column:quantity;default:1"`
	Amount    float64 `gorm:"column:amount;not null"`
	Status    string  `gorm:"column:status;default:pending;index"`

	// GatewayTxnID is the reference extracted from the gateway checkout URL.
	// At most one reference is ever attached to an order; once set it is
	// immutable. Unique so a reference resolves to at most one order.
	GatewayTxnID *string `gorm:"column:gateway_txn_id;uniqueIndex"`
	// ProviderTrxID is the gateway's own transaction id reported by verify.
	ProviderTrxID *string `gorm:"column:provider_trx_id"`

	PaymentMethod      *string    `gorm:"column:payment_method"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Order) TableName() string {
	return "orders"
}

func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted || o.Status == StatusCancelled
}
