package postgres

import (
	"context"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/catalog"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListCategories(ctx context.Context, activeOnly bool) ([]*catalog.Category, error) {
	query := r.db.WithContext(ctx).Order("sort_order ASC, name ASC")
	if activeOnly {
		query = query.Where("is_active = true")
	}
	var categories []*catalog.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&catalog.Category{}, id).Error
}

func (r *Repository) ListPacks(ctx context.Context, categoryID *int64, activeOnly bool) ([]*catalog.DiamondPack, error) {
	query := r.db.WithContext(ctx).Order("sort_order ASC, price ASC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}
	if activeOnly {
		query = query.Where("is_active = true")
	}
	var packs []*catalog.DiamondPack
	if err := query.Find(&packs).Error; err != nil {
		return nil, err
	}
	return packs, nil
}

func (r *Repository) GetPack(ctx context.Context, id int64) (*catalog.DiamondPack, error) {
	var p catalog.DiamondPack
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreatePack(ctx context.Context, p *catalog.DiamondPack) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) UpdatePack(ctx context.Context, p *catalog.DiamondPack) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *Repository) DeletePack(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&catalog.DiamondPack{}, id).Error
}

func (r *Repository) ListCards(ctx context.Context, activeOnly bool) ([]*catalog.TopupCard, error) {
	query := r.db.WithContext(ctx).Order("price ASC")
	if activeOnly {
		query = query.Where("is_active = true")
	}
	var cards []*catalog.TopupCard
	if err := query.Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *Repository) GetCard(ctx context.Context, id int64) (*catalog.TopupCard, error) {
	var c catalog.TopupCard
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CreateCard(ctx context.Context, c *catalog.TopupCard) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repository) UpdateCard(ctx context.Context, c *catalog.TopupCard) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *Repository) DeleteCard(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&catalog.TopupCard{}, id).Error
}

func (r *Repository) ListBanners(ctx context.Context, activeOnly bool) ([]*catalog.Banner, error) {
	query := r.db.WithContext(ctx).Order("sort_order ASC, created_at DESC")
	if activeOnly {
		query = query.Where("is_active = true")
	}
	var banners []*catalog.Banner
	if err := query.Find(&banners).Error; err != nil {
		return nil, err
	}
	return banners, nil
}

func (r *Repository) CreateBanner(ctx context.Context, b *catalog.Banner) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *Repository) DeleteBanner(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&catalog.Banner{}, id).Error
}
