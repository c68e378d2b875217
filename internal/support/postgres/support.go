package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/support"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, ticket *support.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*support.Ticket, error) {
	var ticket support.Ticket
	if err := r.db.WithContext(ctx).First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]*support.Ticket, error) {
	var tickets []*support.Ticket
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *Repository) ListAll(ctx context.Context, status string, limit, offset int) ([]*support.Ticket, error) {
	q := r.db.WithContext(ctx).Model(&support.Ticket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tickets []*support.Ticket
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *Repository) CountAll(ctx context.Context, status string) (int64, error) {
	q := r.db.WithContext(ctx).Model(&support.Ticket{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var count int64
	err := q.Count(&count).Error
	return count, err
}

func (r *Repository) Update(ctx context.Context, ticket *support.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}
