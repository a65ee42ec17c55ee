package models

import (
	"time"

	"github.com/google/uuid"
)

type Cart struct {
	ID        uint      `gorm:"primaryKey"                 json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartItem references its variant by id only; the variant may be gone.
type CartItem struct {
	ID        uint      `gorm:"primaryKey"                               json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_variant;not null"    json:"cart_id"`
	VariantID uint      `gorm:"uniqueIndex:idx_cart_variant;not null"    json:"product_variant_id"`
	Quantity  int       `gorm:"not null;check:quantity > 0"              json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// CartLine is a cart item joined to its variant and product. Either may be nil.
type CartLine struct {
	Item    CartItem
	Variant *ProductVariant
	Product *Product
}

func (l CartLine) Resolved() bool {
	return l.Variant != nil && l.Product != nil
}
