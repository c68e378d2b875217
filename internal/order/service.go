package order

import (
	"context"
	"log/slog"

	errors "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/reconcile"
)

// Service handles order business logic. Order creation only opens a pending
// intent through the reconciliation engine; completion happens when the
// gateway payment is verified.
type Service struct {
	repo       Repository
	catalog    CatalogReader
	reconciler reconcile.ServiceAPI
	logger     *slog.Logger
}

func NewService(repo Repository, catalog CatalogReader, reconciler reconcile.ServiceAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		catalog:    catalog,
		reconciler: reconciler,
		logger:     logger,
	}
}

// InitiateTopup prices the requested product from the catalog and opens a
// gateway checkout for it.
func (s *Service) InitiateTopup(ctx context.Context, userID int64, dto CreateTopupDTO) (*reconcile.InitiateResult, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("topup validation failed", "error", err, "user_id", userID)
		return nil, err
	}

	params := reconcile.InitiateParams{
		Kind:      gateway.KindTopup,
		UserID:    userID,
		Phone:     dto.Phone,
		PlayerUID: dto.PlayerUID,
		Quantity:  1,
	}

	if dto.PackID != nil {
		pack, err := s.catalog.GetPack(ctx, *dto.PackID)
		if err != nil || !pack.IsActive {
			s.logger.Error("topup references unknown pack", "error", err, "pack_id", *dto.PackID, "user_id", userID)
			return nil, errors.ErrPackNotFound
		}
		params.PackID = dto.PackID
		params.ItemName = pack.Name
		params.Diamonds = pack.Diamonds
		params.Amount = pack.Price
	} else {
		card, err := s.catalog.GetCard(ctx, *dto.CardID)
		if err != nil || !card.IsActive {
			s.logger.Error("topup references unknown card", "error", err, "card_id", *dto.CardID, "user_id", userID)
			return nil, errors.ErrCardNotFound
		}
		quantity := dto.EffectiveQuantity()
		params.CardID = dto.CardID
		params.CardName = card.Name
		params.ItemName = card.Name
		params.Quantity = quantity
		params.Amount = card.Price * float64(quantity)
	}

	result, err := s.reconciler.Initiate(ctx, params)
	if err != nil {
		s.logger.Error("topup initiation failed", "error", err, "user_id", userID, "amount", params.Amount)
		return nil, err
	}

	s.logger.Info("topup checkout initiated",
		"user_id", userID,
		"order_id", result.IntentID,
		"item", params.ItemName,
		"amount", params.Amount,
		"gateway_txn_id", result.GatewayTxnID)

	return result, nil
}

// GetOrder retrieves an order with access control: owners and admins only.
func (s *Service) GetOrder(ctx context.Context, id, userID int64, isAdmin bool) (*order.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get order", "error", err, "order_id", id)
		return nil, errors.ErrOrderNotFound
	}

	if !isAdmin && o.UserID != userID {
		s.logger.Warn("unauthorized order access", "order_id", id, "user_id", userID, "owner_id", o.UserID)
		return nil, errors.ErrOrderNotFound
	}

	return o, nil
}

func (s *Service) UserOrders(ctx context.Context, userID int64, limit, offset int) (*ListResult, error) {
	limit, offset = clampPage(limit, offset)

	orders, err := s.repo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list user orders", "error", err, "user_id", userID)
		return nil, err
	}

	total, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ListResult{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *Service) AllOrders(ctx context.Context, status string, limit, offset int) (*ListResult, error) {
	limit, offset = clampPage(limit, offset)

	orders, err := s.repo.GetAll(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err, "status", status)
		return nil, err
	}

	total, err := s.repo.CountAll(ctx, status)
	if err != nil {
		return nil, err
	}

	return &ListResult{Orders: orders, Total: total, Limit: limit, Offset: offset}, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
