package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/devrahi999/ihntopup/internal/admin"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&user.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) OrderTotals(ctx context.Context) (*admin.OrderTotals, error) {
	totals := &admin.OrderTotals{}

	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Count(&totals.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("status = ?", order.StatusPending).
		Count(&totals.PendingOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("status = ?", order.StatusCompleted).
		Count(&totals.CompletedOrders).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("status = ?", order.StatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&totals.TotalRevenue).Error; err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *Repository) RecentUsers(ctx context.Context, limit int) ([]*user.User, error) {
	var users []*user.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]*order.Order, error) {
	var orders []*order.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]*user.User, error) {
	var users []*user.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) CompletedOrderAggregates(ctx context.Context) (map[int64]admin.OrderAggregate, error) {
	var rows []struct {
		UserID int64
		Count  int64
		Spent  float64
	}
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Select("user_id, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS spent").
		Where("status = ?", order.StatusCompleted).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]admin.OrderAggregate, len(rows))
	for _, row := range rows {
		out[row.UserID] = admin.OrderAggregate{Count: row.Count, Spent: row.Spent}
	}
	return out, nil
}
