package reconcile

import (
	"context"
	"time"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/wallet"
)

// Intent is the engine's uniform view over the two pending-payment tables:
// orders (kind=topup) and wallet transactions (kind=wallet_add).
type Intent struct {
	Kind         string
	ID           int64
	UserID       int64
	Amount       float64
	Status       string
	GatewayTxnID *string
	CreatedAt    time.Time
}

func (i *Intent) IsTerminal() bool {
	return i.Status == order.StatusCompleted || i.Status == order.StatusCancelled
}

// Ledger is the storage contract the engine requires. Implementations must
// make CommitOrder and CommitWalletCredit atomic: the pending→completed
// status flip is a conditional update that succeeds for exactly one caller,
// and for wallet credits the balance adjustment happens in the same database
// transaction as the flip.
type Ledger interface {
	GetUser(ctx context.Context, userID int64) (*user.User, error)

	CreatePendingOrder(ctx context.Context, o *order.Order) error
	CreatePendingWalletCredit(ctx context.Context, t *wallet.Transaction) error

	// AttachGatewayRef sets the gateway transaction reference on a pending
	// intent. It must refuse to overwrite an existing reference.
	AttachGatewayRef(ctx context.Context, kind string, id int64, ref string) error

	// DeleteIntent removes an intent that never got a usable gateway
	// reference. Only valid while the intent is still pending.
	DeleteIntent(ctx context.Context, kind string, id int64) error

	IntentByGatewayRef(ctx context.Context, ref string) (*Intent, error)

	// CommitOrder flips the order pending→completed and attaches the verified
	// method, provider transaction id and amount. Returns committed=false
	// when the order was already terminal (the caller lost the race).
	CommitOrder(ctx context.Context, orderID int64, method, providerTrxID string, amount float64) (bool, error)

	// CommitWalletCredit flips the wallet transaction pending→completed and
	// credits the user balance by the transaction amount, both inside one
	// database transaction.
	CommitWalletCredit(ctx context.Context, txnID int64, method, providerTrxID string) (bool, error)

	// CancelByGatewayRef marks the intent carrying ref cancelled if still
	// pending. Returns the number of rows cancelled (0 or 1).
	CancelByGatewayRef(ctx context.Context, ref, reason string) (int, error)

	// CancelPendingByUser cancels every still-pending intent the user owns,
	// across both tables. Idempotent: terminal rows are untouched.
	CancelPendingByUser(ctx context.Context, userID int64, reason string) (int, error)

	// CancelIntent cancels a single intent by kind and id if still pending.
	// Used by the expiry sweep for intents that never got a gateway reference.
	CancelIntent(ctx context.Context, kind string, id int64, reason string) (bool, error)

	// ListStalePending returns pending intents created before the cutoff, for
	// the expiry sweep.
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]Intent, error)
}

// ErrIntentNotFound is returned by IntentByGatewayRef implementations when no
// row carries the reference.
type notFoundErr struct{}

func (notFoundErr) Error() string { return "intent not found" }

var ErrIntentNotFound error = notFoundErr{}

// Reconciliation outcomes. The already-* results are expected under correct
// operation whenever the webhook and the redirect race; callers must treat
// them as success.
const (
	ResultCompleted        = "completed"
	ResultAlreadyProcessed = "already-processed"
	ResultAlreadyCancelled = "already-cancelled"
	ResultCancelled        = "cancelled"
)

type Result struct {
	Status        string  `json:"status"`
	Kind          string  `json:"kind,omitempty"`
	IntentID      int64   `json:"intent_id,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	ProviderTrxID string  `json:"provider_trx_id,omitempty"`
	Detail        string  `json:"detail,omitempty"`
}

type InitiateParams struct {
	Kind     string
	UserID   int64
	Amount   float64
	Fullname string
	Email    string
	Phone    string

	// topup-only fields
	PackID    *int64
	CardID    *int64
	CardName  string
	PlayerUID string
	ItemName  string
	Diamonds  int
	Quantity  int
}

type InitiateResult struct {
	IntentID     int64  `json:"intent_id"`
	GatewayTxnID string `json:"gateway_txn_id"`
	PaymentURL   string `json:"payment_url"`
}

type CancelResult struct {
	Cancelled int    `json:"cancelled"`
	Reason    string `json:"reason"`
}

type SweepResult struct {
	Examined  int `json:"examined"`
	Committed int `json:"committed"`
	Cancelled int `json:"cancelled"`
}

// ServiceAPI is the engine surface exposed to HTTP handlers and the other
// domain services. Handlers never mutate the ledger directly.
type ServiceAPI interface {
	Initiate(ctx context.Context, params InitiateParams) (*InitiateResult, error)
	Reconcile(ctx context.Context, gatewayTxnRef, claimedMethod string) (*Result, error)
	CancelAll(ctx context.Context, userID int64, gatewayTxnRef, reasonStatus string) (*CancelResult, error)
	SweepStale(ctx context.Context, olderThan time.Duration) (*SweepResult, error)
}
