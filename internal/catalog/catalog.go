package catalog

import (
	"context"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/catalog"
)

// Repository defines the data access methods for storefront products.
type Repository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]*catalog.Category, error)
	CreateCategory(ctx context.Context, c *catalog.Category) error
	UpdateCategory(ctx context.Context, c *catalog.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	ListPacks(ctx context.Context, categoryID *int64, activeOnly bool) ([]*catalog.DiamondPack, error)
	GetPack(ctx context.Context, id int64) (*catalog.DiamondPack, error)
	CreatePack(ctx context.Context, p *catalog.DiamondPack) error
	UpdatePack(ctx context.Context, p *catalog.DiamondPack) error
	DeletePack(ctx context.Context, id int64) error

	ListCards(ctx context.Context, activeOnly bool) ([]*catalog.TopupCard, error)
	GetCard(ctx context.Context, id int64) (*catalog.TopupCard, error)
	CreateCard(ctx context.Context, c *catalog.TopupCard) error
	UpdateCard(ctx context.Context, c *catalog.TopupCard) error
	DeleteCard(ctx context.Context, id int64) error

	ListBanners(ctx context.Context, activeOnly bool) ([]*catalog.Banner, error)
	CreateBanner(ctx context.Context, b *catalog.Banner) error
	DeleteBanner(ctx context.Context, id int64) error
}
