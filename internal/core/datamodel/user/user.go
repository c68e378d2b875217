package user

import (
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Email         string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash  string    `gorm:"column:password_hash;not null"`
	Phone         string    `gorm:"column:phone"`
	Role          string    `gorm:"column:role;default:customer"`
	WalletBalance float64   `gorm:"column:wallet_balance;default:0"`
	IsActive      bool      `gorm:"column:is_active;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}
