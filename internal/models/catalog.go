package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Product is soft-deleted; a deleted product reads as missing everywhere.
type Product struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"                     json:"id"`
	Name            string          `gorm:"size:255;not null"                            json:"name"`
	Thumbnail       string          `gorm:"size:500"                                     json:"thumbnail"`
	BasePrice       decimal.Decimal `gorm:"type:numeric(15,2);not null"                  json:"base_price"`
	DiscountPercent int             `gorm:"not null;check:discount_percent BETWEEN 0 AND 100" json:"discount_percent"`
	IsPublished     bool            `gorm:"not null"                                     json:"is_published"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index"                                        json:"-"`
}

// ProductVariant is one purchasable SKU. A nil Stock means untracked.
type ProductVariant struct {
	ID         uint              `gorm:"primaryKey;autoIncrement"    json:"id"`
	ProductID  uint              `gorm:"index;not null"              json:"product_id"`
	SKU        string            `gorm:"size:50;uniqueIndex;not null" json:"sku"`
	Attributes datatypes.JSONMap `json:"attributes"`
	PriceDelta decimal.Decimal   `gorm:"type:numeric(15,2);not null" json:"price_delta"`
	Stock      *int              `gorm:"check:stock >= 0"            json:"stock"`
	IsActive   bool              `gorm:"not null"                    json:"is_active"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
