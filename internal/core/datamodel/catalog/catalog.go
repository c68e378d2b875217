package catalog

import (
	"time"
)

type Category struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Slug      string    `gorm:"column:slug;not null;uniqueIndex"`
	ImageURL  string    `gorm:"column:image_url"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	SortOrder int       `gorm:"column:sort_order;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Category) TableName() string {
	return "categories"
}

type DiamondPack struct {
	ID            int64     `gorm:"primaryKey"`
	CategoryID    *int64    `gorm:"column:category_id"`
	Name          string    `gorm:"column:name;not null"`
	Diamonds      int       `gorm:"column:diamonds;not null"`
	Price         float64   `gorm:"column:price;not null"`
	OriginalPrice *float64  `gorm:"column:original_price"`
	ImageURL      string    `gorm:"column:image_url"`
	IsActive      bool      `gorm:"column:is_active;default:true"`
	SortOrder     int       `gorm:"column:sort_order;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}

func (DiamondPack) TableName() string {
	return "diamond_packs"
}

// TopupCard is a prepaid voucher product (a code the admin delivers manually
// after payment).
type TopupCard struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Price       float64   `gorm:"column:price;not null"`
	ImageURL    string    `gorm:"column:image_url"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (TopupCard) TableName() string {
	return "topup_cards"
}

type Banner struct {
	ID        int64     `gorm:"primaryKey"`
	Title     string    `gorm:"column:title"`
	ImageURL  string    `gorm:"column:image_url;not null"`
	LinkURL   string    `gorm:"column:link_url"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	SortOrder int       `gorm:"column:sort_order;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

func (Banner) TableName() string {
	return "banners"
}
