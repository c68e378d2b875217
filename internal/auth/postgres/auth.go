package postgres

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/devrahi999/ihntopup/internal/auth"
	"github.com/devrahi999/ihntopup/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetPasswordForEmail(email string) (string, string, error) {
	var u user.User
	err := r.db.Where("email = ? AND is_active = true", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", fmt.Errorf("user not found")
		}
		return "", "", err
	}
	return u.PasswordHash, strconv.FormatInt(u.ID, 10), nil
}

func (r *Repository) GetUserWithPermissions(userID int64) (*auth.User, error) {
	var u user.User
	err := r.db.Where("id = ? AND is_active = true", userID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found")
		}
		return nil, err
	}

	return &auth.User{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Permissions: auth.PermissionsForRole(u.Role),
	}, nil
}

func (r *Repository) CreateUser(name, email, passwordHash, phone string) (int64, error) {
	u := user.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        phone,
		Role:         user.RoleCustomer,
		IsActive:     true,
	}
	if err := r.db.Create(&u).Error; err != nil {
		return 0, err
	}
	return u.ID, nil
}

func (r *Repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&user.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
