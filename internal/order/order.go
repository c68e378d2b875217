package order

import (
	"context"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/catalog"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/order"
	"github.com/devrahi999/ihntopup/internal/reconcile"
)

// Repository defines the data access methods for orders.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*order.Order, error)
	GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]*order.Order, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	GetAll(ctx context.Context, status string, limit, offset int) ([]*order.Order, error)
	CountAll(ctx context.Context, status string) (int64, error)
}

// CatalogReader resolves the products an order is priced from. Prices always
// come from the catalog row, never from the request body.
type CatalogReader interface {
	GetPack(ctx context.Context, id int64) (*catalog.DiamondPack, error)
	GetCard(ctx context.Context, id int64) (*catalog.TopupCard, error)
}

// ServiceAPI is the order surface exposed to HTTP handlers.
type ServiceAPI interface {
	InitiateTopup(ctx context.Context, userID int64, dto CreateTopupDTO) (*reconcile.InitiateResult, error)
	GetOrder(ctx context.Context, id, userID int64, isAdmin bool) (*order.Order, error)
	UserOrders(ctx context.Context, userID int64, limit, offset int) (*ListResult, error)
	AllOrders(ctx context.Context, status string, limit, offset int) (*ListResult, error)
}

type ListResult struct {
	Orders []*order.Order `json:"orders"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}
