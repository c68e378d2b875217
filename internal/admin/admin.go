package admin

import (
	"context"
	"time"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
)

// Repository defines the aggregate queries backing the admin dashboard and
// user listing.
type Repository interface {
	CountUsers(ctx context.Context) (int64, error)
	OrderTotals(ctx context.Context) (*OrderTotals, error)
	RecentUsers(ctx context.Context, limit int) ([]*user.User, error)
	RecentOrders(ctx context.Context, limit int) ([]*order.Order, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*user.User, error)
	CompletedOrderAggregates(ctx context.Context) (map[int64]OrderAggregate, error)
}

// ServiceAPI is the admin surface exposed to HTTP handlers.
type ServiceAPI interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	ListUsers(ctx context.Context, limit, offset int) (*UserListResult, error)
}

// OrderTotals are store-wide order counts; revenue counts completed orders
// only, pending money is not revenue.
type OrderTotals struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
}

// OrderAggregate is one user's completed order count and spend.
type OrderAggregate struct {
	Count int64
	Spent float64
}

type DashboardStats struct {
	TotalUsers      int64          `json:"total_users"`
	TotalOrders     int64          `json:"total_orders"`
	PendingOrders   int64          `json:"pending_orders"`
	CompletedOrders int64          `json:"completed_orders"`
	TotalRevenue    float64        `json:"total_revenue"`
	RecentUsers     []UserSummary  `json:"recent_users"`
	RecentOrders    []*order.Order `json:"recent_orders"`
}

// UserSummary is the admin view of an account. Password hashes never leave
// the storage layer through this type.
type UserSummary struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	WalletBalance float64   `json:"wallet_balance"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	OrderCount    int64     `json:"order_count"`
	TotalSpent    float64   `json:"total_spent"`
}

type UserListResult struct {
	Users  []UserSummary `json:"users"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

func summarize(u *user.User) UserSummary {
	return UserSummary{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Phone:         u.Phone,
		Role:          u.Role,
		WalletBalance: u.WalletBalance,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
	}
}
