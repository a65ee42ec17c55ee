package transport

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartProduct struct {
	ProductID       uint             `json:"product_id"`
	Name            string           `json:"name"`
	Thumbnail       string           `json:"thumbnail"`
	Price           decimal.Decimal  `json:"price"`
	DiscountPercent int              `json:"discount_percent"`
	SalePrice       *decimal.Decimal `json:"sale_price"`
}

type CartLine struct {
	CartItemID          uint            `json:"cart_item_id"`
	ProductVariantID    uint            `json:"product_variant_id"`
	Quantity            int             `json:"quantity"`
	VariantAttributes   map[string]any  `json:"variant_attributes"`
	AvailableStock      *int            `json:"available_stock"`
	PurchasableQuantity int             `json:"purchasable_quantity"`
	IsAvailable         bool            `json:"is_available"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
	LineTotal           decimal.Decimal `json:"line_total"`
	Product             CartProduct     `json:"product"`
}

type CartView struct {
	CartID    uint            `json:"cart_id"`
	UpdatedAt time.Time       `json:"updated_at"`
	Items     []CartLine      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type AddCartItemRequest struct {
	ProductVariantID uint `json:"product_variant_id"`
	Quantity         int  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CartItemIDs left out (null) selects the whole cart; an empty list selects
// nothing.
type ValidateDiscountRequest struct {
	DiscountCode string `json:"discount_code"`
	CartItemIDs  []uint `json:"cart_item_ids"`
}

type DiscountPreview struct {
	DiscountID     uint            `json:"discount_id"`
	Code           string          `json:"code"`
	Type           string          `json:"type"`
	Value          decimal.Decimal `json:"value"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

type CheckoutRequest struct {
	ShippingAddressID uint             `json:"shipping_address_id"`
	PaymentMethod     string           `json:"payment_method"`
	CartItemIDs       []uint           `json:"cart_item_ids"`
	DiscountCode      string           `json:"discount_code"`
	ShippingFee       *decimal.Decimal `json:"shipping_fee"`
	Note              string           `json:"note"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type CreateDiscountRequest struct {
	Code              string           `json:"code"`
	Type              string           `json:"type"`
	Value             decimal.Decimal  `json:"value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
	MinOrderValue     *decimal.Decimal `json:"min_order_value"`
	StartDate         *time.Time       `json:"start_date"`
	EndDate           *time.Time       `json:"end_date"`
	UsageLimit        *int             `json:"usage_limit"`
	IsActive          *bool            `json:"is_active"`
}

type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}
