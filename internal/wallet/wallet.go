package wallet

import (
	"context"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/wallet"
	"github.com/devrahi999/ihntopup/internal/reconcile"
)

// Repository defines the data access methods for the wallet ledger.
type Repository interface {
	GetBalance(ctx context.Context, userID int64) (float64, error)
	GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]*wallet.Transaction, error)
	CountTransactions(ctx context.Context, userID int64) (int64, error)
}

// ServiceAPI is the wallet surface exposed to HTTP handlers.
type ServiceAPI interface {
	Balance(ctx context.Context, userID int64) (float64, error)
	History(ctx context.Context, userID int64, limit, offset int) (*HistoryResult, error)
	InitiateRecharge(ctx context.Context, userID int64, dto RechargeDTO) (*reconcile.InitiateResult, error)
}

type HistoryResult struct {
	Transactions []*wallet.Transaction `json:"transactions"`
	Total        int64                 `json:"total"`
	Limit        int                   `json:"limit"`
	Offset       int                   `json:"offset"`
}
