package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/gateway"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/wallet"
	"github.com/devrahi999/ihntopup/internal/reconcile"
	"gorm.io/gorm"
)

// LedgerRepository implements reconcile.Ledger over the orders and
// transactions tables. All terminal transitions are conditional updates
// guarded by `status = 'pending'`, so the database row itself is the
// idempotence guard; two racing callers cannot both win.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) reconcile.Ledger {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetUser(ctx context.Context, userID int64) (*user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).First(&u, userID).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *LedgerRepository) CreatePendingOrder(ctx context.Context, o *order.Order) error {
	o.Status = order.StatusPending
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *LedgerRepository) CreatePendingWalletCredit(ctx context.Context, t *wallet.Transaction) error {
	t.Status = wallet.StatusPending
	t.Type = wallet.TypeCredit
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LedgerRepository) AttachGatewayRef(ctx context.Context, kind string, id int64, ref string) error {
	var result *gorm.DB
	switch kind {
	case gateway.KindWalletAdd:
		result = r.db.WithContext(ctx).Model(&wallet.Transaction{}).
			Where("id = ? AND gateway_txn_id IS NULL", id).
			Update("gateway_txn_id", ref)
	default:
		result = r.db.WithContext(ctx).Model(&order.Order{}).
			Where("id = ? AND gateway_txn_id IS NULL", id).
			Update("gateway_txn_id", ref)
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("intent %s/%d already carries a gateway reference", kind, id)
	}
	return nil
}

func (r *LedgerRepository) DeleteIntent(ctx context.Context, kind string, id int64) error {
	switch kind {
	case gateway.KindWalletAdd:
		return r.db.WithContext(ctx).
			Where("id = ? AND status = ?", id, wallet.StatusPending).
			Delete(&wallet.Transaction{}).Error
	default:
		return r.db.WithContext(ctx).
			Where("id = ? AND status = ?", id, order.StatusPending).
			Delete(&order.Order{}).Error
	}
}

func (r *LedgerRepository) IntentByGatewayRef(ctx context.Context, ref string) (*reconcile.Intent, error) {
	var o order.Order
	err := r.db.WithContext(ctx).Where("gateway_txn_id = ?", ref).First(&o).Error
	if err == nil {
		return &reconcile.Intent{
			Kind:         gateway.KindTopup,
			ID:           o.ID,
			UserID:       o.UserID,
			Amount:       o.Amount,
			Status:       o.Status,
			GatewayTxnID: o.GatewayTxnID,
			CreatedAt:    o.CreatedAt,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var t wallet.Transaction
	err = r.db.WithContext(ctx).Where("gateway_txn_id = ?", ref).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, reconcile.ErrIntentNotFound
		}
		return nil, err
	}
	return &reconcile.Intent{
		Kind:         gateway.KindWalletAdd,
		ID:           t.ID,
		UserID:       t.UserID,
		Amount:       t.Amount,
		Status:       t.Status,
		GatewayTxnID: t.GatewayTxnID,
		CreatedAt:    t.CreatedAt,
	}, nil
}

func (r *LedgerRepository) CommitOrder(ctx context.Context, orderID int64, method, providerTrxID string, amount float64) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":          order.StatusCompleted,
		"payment_method":  method,
		"provider_trx_id": providerTrxID,
		"completed_at":    now,
		"updated_at":      now,
	}
	if amount > 0 {
		updates["amount"] = amount
	}

	result := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ? AND status = ?", orderID, order.StatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *LedgerRepository) CommitWalletCredit(ctx context.Context, txnID int64, method, providerTrxID string) (bool, error) {
	committed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn wallet.Transaction
		if err := tx.First(&txn, txnID).Error; err != nil {
			return err
		}

		now := time.Now()
		result := tx.Model(&wallet.Transaction{}).
			Where("id = ? AND status = ?", txnID, wallet.StatusPending).
			Updates(map[string]interface{}{
				"status":          wallet.StatusCompleted,
				"method":          method,
				"provider_trx_id": providerTrxID,
				"description":     fmt.Sprintf("Wallet recharge completed (%s)", method),
				"completed_at":    now,
				"updated_at":      now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// already terminal, nothing to credit
			return nil
		}

		// credit in the same transaction as the flip so a crash cannot
		// leave the balance and the status disagreeing
		if err := tx.Model(&user.User{}).
			Where("id = ?", txn.UserID).
			Update("wallet_balance", gorm.Expr("wallet_balance + ?", txn.Amount)).Error; err != nil {
			return err
		}

		committed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return committed, nil
}

func (r *LedgerRepository) CancelByGatewayRef(ctx context.Context, ref, reason string) (int, error) {
	total := 0

	result := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("gateway_txn_id = ? AND status = ?", ref, order.StatusPending).
		Updates(map[string]interface{}{
			"status":              order.StatusCancelled,
			"cancellation_reason": reason,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	total += int(result.RowsAffected)

	result = r.db.WithContext(ctx).Model(&wallet.Transaction{}).
		Where("gateway_txn_id = ? AND status = ?", ref, wallet.StatusPending).
		Updates(map[string]interface{}{
			"status":              wallet.StatusCancelled,
			"cancellation_reason": reason,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return total, result.Error
	}
	total += int(result.RowsAffected)

	return total, nil
}

func (r *LedgerRepository) CancelPendingByUser(ctx context.Context, userID int64, reason string) (int, error) {
	total := 0

	result := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("user_id = ? AND status = ?", userID, order.StatusPending).
		Updates(map[string]interface{}{
			"status":              order.StatusCancelled,
			"cancellation_reason": reason,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	total += int(result.RowsAffected)

	result = r.db.WithContext(ctx).Model(&wallet.Transaction{}).
		Where("user_id = ? AND status = ?", userID, wallet.StatusPending).
		Updates(map[string]interface{}{
			"status":              wallet.StatusCancelled,
			"cancellation_reason": reason,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return total, result.Error
	}
	total += int(result.RowsAffected)

	return total, nil
}

func (r *LedgerRepository) CancelIntent(ctx context.Context, kind string, id int64, reason string) (bool, error) {
	var result *gorm.DB
	updates := map[string]interface{}{
		"cancellation_reason": reason,
		"updated_at":          time.Now(),
	}
	switch kind {
	case gateway.KindWalletAdd:
		updates["status"] = wallet.StatusCancelled
		result = r.db.WithContext(ctx).Model(&wallet.Transaction{}).
			Where("id = ? AND status = ?", id, wallet.StatusPending).
			Updates(updates)
	default:
		updates["status"] = order.StatusCancelled
		result = r.db.WithContext(ctx).Model(&order.Order{}).
			Where("id = ? AND status = ?", id, order.StatusPending).
			Updates(updates)
	}
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *LedgerRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]reconcile.Intent, error) {
	if limit <= 0 {
		limit = 100
	}

	var intents []reconcile.Intent

	var orders []order.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", order.StatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		intents = append(intents, reconcile.Intent{
			Kind:         gateway.KindTopup,
			ID:           o.ID,
			UserID:       o.UserID,
			Amount:       o.Amount,
			Status:       o.Status,
			GatewayTxnID: o.GatewayTxnID,
			CreatedAt:    o.CreatedAt,
		})
	}

	var txns []wallet.Transaction
	err = r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", wallet.StatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		intents = append(intents, reconcile.Intent{
			Kind:         gateway.KindWalletAdd,
			ID:           t.ID,
			UserID:       t.UserID,
			Amount:       t.Amount,
			Status:       t.Status,
			GatewayTxnID: t.GatewayTxnID,
			CreatedAt:    t.CreatedAt,
		})
	}

	return intents, nil
}
