package postgres

import (
	"errors"
	"time"

	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
	domain "github.com/devrahi999/ihntopup/internal/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(userID int64) (*domain.User, error) {
	var u user.User
	if err := r.db.First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return domain.FromDataModel(&u), nil
}

func (r *Repository) UpdateProfile(userID int64, name, phone string) error {
	result := r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"name":       name,
			"phone":      phone,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
