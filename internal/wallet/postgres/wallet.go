package postgres

import (
	"context"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/wallet"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBalance(ctx context.Context, userID int64) (float64, error) {
	var u user.User
	if err := r.db.WithContext(ctx).Select("wallet_balance").First(&u, userID).Error; err != nil {
		return 0, err
	}
	return u.WalletBalance, nil
}

func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit, offset int) ([]*wallet.Transaction, error) {
	var transactions []*wallet.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *Repository) CountTransactions(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&wallet.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
