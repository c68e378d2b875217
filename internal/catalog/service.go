package catalog

import (
	"context"
	"log/slog"
	"strings"

	errors "github.com/devrahi999/ihntopup/internal"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/catalog"
)

// Service handles storefront catalog logic. Public reads return active rows
// only; admin operations see everything.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Categories(ctx context.Context, includeInactive bool) ([]*catalog.Category, error) {
	return s.repo.ListCategories(ctx, !includeInactive)
}

func (s *Service) CreateCategory(ctx context.Context, c *catalog.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.NewValidationError("category name is required", errors.ErrCodeValidationFailed)
	}
	if c.Slug == "" {
		c.Slug = slugify(c.Name)
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", c.Name)
		return err
	}
	return nil
}

func (s *Service) UpdateCategory(ctx context.Context, c *catalog.Category) error {
	return s.repo.UpdateCategory(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *Service) Packs(ctx context.Context, categoryID *int64, includeInactive bool) ([]*catalog.DiamondPack, error) {
	return s.repo.ListPacks(ctx, categoryID, !includeInactive)
}

func (s *Service) GetPack(ctx context.Context, id int64) (*catalog.DiamondPack, error) {
	pack, err := s.repo.GetPack(ctx, id)
	if err != nil {
		return nil, errors.ErrPackNotFound
	}
	return pack, nil
}

func (s *Service) CreatePack(ctx context.Context, p *catalog.DiamondPack) error {
	if err := validatePack(p); err != nil {
		return err
	}
	if err := s.repo.CreatePack(ctx, p); err != nil {
		s.logger.Error("failed to create pack", "error", err, "name", p.Name)
		return err
	}
	return nil
}

func (s *Service) UpdatePack(ctx context.Context, p *catalog.DiamondPack) error {
	if err := validatePack(p); err != nil {
		return err
	}
	return s.repo.UpdatePack(ctx, p)
}

func (s *Service) DeletePack(ctx context.Context, id int64) error {
	return s.repo.DeletePack(ctx, id)
}

func (s *Service) Cards(ctx context.Context, includeInactive bool) ([]*catalog.TopupCard, error) {
	return s.repo.ListCards(ctx, !includeInactive)
}

func (s *Service) GetCard(ctx context.Context, id int64) (*catalog.TopupCard, error) {
	card, err := s.repo.GetCard(ctx, id)
	if err != nil {
		return nil, errors.ErrCardNotFound
	}
	return card, nil
}

func (s *Service) CreateCard(ctx context.Context, c *catalog.TopupCard) error {
	if strings.TrimSpace(c.Name) == "" || c.Price <= 0 {
		return errors.NewValidationError("card requires a name and a positive price", errors.ErrCodeValidationFailed)
	}
	if err := s.repo.CreateCard(ctx, c); err != nil {
		s.logger.Error("failed to create card", "error", err, "name", c.Name)
		return err
	}
	return nil
}

func (s *Service) UpdateCard(ctx context.Context, c *catalog.TopupCard) error {
	return s.repo.UpdateCard(ctx, c)
}

func (s *Service) DeleteCard(ctx context.Context, id int64) error {
	return s.repo.DeleteCard(ctx, id)
}

func (s *Service) Banners(ctx context.Context) ([]*catalog.Banner, error) {
	return s.repo.ListBanners(ctx, true)
}

func (s *Service) CreateBanner(ctx context.Context, b *catalog.Banner) error {
	if b.ImageURL == "" {
		return errors.NewValidationError("banner image_url is required", errors.ErrCodeValidationFailed)
	}
	return s.repo.CreateBanner(ctx, b)
}

func (s *Service) DeleteBanner(ctx context.Context, id int64) error {
	return s.repo.DeleteBanner(ctx, id)
}

func validatePack(p *catalog.DiamondPack) *errors.AppError {
	if strings.TrimSpace(p.Name) == "" {
		return errors.NewValidationError("pack name is required", errors.ErrCodeValidationFailed)
	}
	if p.Diamonds <= 0 {
		return errors.NewValidationError("pack diamonds must be positive", errors.ErrCodeValidationFailed)
	}
	if p.Price <= 0 {
		return errors.NewValidationError("pack price must be positive", errors.ErrCodeInvalidAmount)
	}
	return nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
