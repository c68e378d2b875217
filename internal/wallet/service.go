package wallet

import (
	"context"
	"log/slog"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
	"github.com/devrahi999/ihntopup/internal/reconcile"
)

// Service handles wallet business logic. Recharges are never credited here:
// the service only opens a pending intent through the reconciliation engine
// and the balance moves when the gateway payment is verified.
type Service struct {
	repo       Repository
	reconciler reconcile.ServiceAPI
	logger     *slog.Logger
}

func NewService(repo Repository, reconciler reconcile.ServiceAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (s *Service) Balance(ctx context.Context, userID int64) (float64, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get wallet balance", "error", err, "user_id", userID)
		return 0, err
	}
	return balance, nil
}

func (s *Service) History(ctx context.Context, userID int64, limit, offset int) (*HistoryResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	transactions, err := s.repo.GetTransactions(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to get wallet history", "error", err, "user_id", userID)
		return nil, err
	}

	total, err := s.repo.CountTransactions(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count wallet transactions", "error", err, "user_id", userID)
		return nil, err
	}

	return &HistoryResult{
		Transactions: transactions,
		Total:        total,
		Limit:        limit,
		Offset:       offset,
	}, nil
}

func (s *Service) InitiateRecharge(ctx context.Context, userID int64, dto RechargeDTO) (*reconcile.InitiateResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("recharge validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	result, err := s.reconciler.Initiate(ctx, reconcile.InitiateParams{
		Kind:   gateway.KindWalletAdd,
		UserID: userID,
		Amount: dto.Amount,
		Phone:  dto.Phone,
	})
	if err != nil {
		s.logger.Error("recharge initiation failed", "error", err, "user_id", userID, "amount", dto.Amount)
		return nil, err
	}

	s.logger.Info("wallet recharge initiated",
		"user_id", userID,
		"amount", dto.Amount,
		"transaction_id", result.IntentID,
		"gateway_txn_id", result.GatewayTxnID)

	return result, nil
}
