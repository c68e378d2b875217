package postgres

import (
	"context"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]*order.Order, error) {
	var orders []*order.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Repository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *Repository) GetAll(ctx context.Context, status string, limit, offset int) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []*order.Order
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Repository) CountAll(ctx context.Context, status string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&order.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
