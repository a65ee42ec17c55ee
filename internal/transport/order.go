package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

type OrderItemRead struct {
	ID                uint            `json:"id"`
	ProductVariantID  *uint           `json:"product_variant_id"`
	ProductName       string          `json:"product_name"`
	VariantAttributes map[string]any  `json:"variant_attributes"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
}

type OrderRead struct {
	ID                  uint            `json:"id"`
	Code                string          `json:"code"`
	Status              string          `json:"status"`
	PaymentMethod       string          `json:"payment_method"`
	PaymentStatus       string          `json:"payment_status"`
	RecipientName       string          `json:"recipient_name"`
	RecipientPhone      string          `json:"recipient_phone"`
	ShippingAddressFull string          `json:"shipping_address_full"`
	ShippingProvince    string          `json:"shipping_province"`
	ShippingWard        string          `json:"shipping_ward"`
	DiscountID          *uint           `json:"discount_id"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	DiscountAmount      decimal.Decimal `json:"discount_amount"`
	ShippingFee         decimal.Decimal `json:"shipping_fee"`
	TotalPrice          decimal.Decimal `json:"total_price"`
	Note                string          `json:"note"`
	CreatedAt           time.Time       `json:"created_at"`
	Items               []OrderItemRead `json:"items"`
}

func NewOrderRead(o *models.Order) OrderRead {
	out := OrderRead{
		ID:                  o.ID,
		Code:                o.Code,
		Status:              string(o.Status),
		PaymentMethod:       string(o.PaymentMethod),
		PaymentStatus:       o.PaymentStatus,
		RecipientName:       o.RecipientName,
		RecipientPhone:      o.RecipientPhone,
		ShippingAddressFull: o.ShippingAddressFull,
		ShippingProvince:    o.ShippingProvince,
		ShippingWard:        o.ShippingWard,
		DiscountID:          o.DiscountID,
		Subtotal:            o.Subtotal,
		DiscountAmount:      o.DiscountAmount,
		ShippingFee:         o.ShippingFee,
		TotalPrice:          o.TotalPrice,
		Note:                o.Note,
		CreatedAt:           o.CreatedAt,
		Items:               make([]OrderItemRead, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemRead{
			ID:                it.ID,
			ProductVariantID:  it.VariantID,
			ProductName:       it.ProductName,
			VariantAttributes: it.VariantAttributesSnapshot,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			TotalPrice:        it.TotalPrice,
		})
	}
	return out
}

func NewOrderReads(orders []models.Order) []OrderRead {
	out := make([]OrderRead, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderRead(&orders[i]))
	}
	return out
}

type DiscountRead struct {
	ID                uint             `json:"id"`
	Code              string           `json:"code"`
	Type              string           `json:"type"`
	Value             decimal.Decimal  `json:"value"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount"`
	MinOrderValue     *decimal.Decimal `json:"min_order_value"`
	StartDate         *time.Time       `json:"start_date"`
	EndDate           *time.Time       `json:"end_date"`
	UsageLimit        *int             `json:"usage_limit"`
	UsedCount         int              `json:"used_count"`
	IsActive          bool             `json:"is_active"`
	CreatedAt         time.Time        `json:"created_at"`
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func NewDiscountRead(d *models.Discount) DiscountRead {
	return DiscountRead{
		ID:                d.ID,
		Code:              d.Code,
		Type:              string(d.Kind),
		Value:             d.Value,
		MaxDiscountAmount: nullable(d.MaxDiscountAmount),
		MinOrderValue:     nullable(d.MinOrderValue),
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		UsageLimit:        d.UsageLimit,
		UsedCount:         d.UsedCount,
		IsActive:          d.IsActive,
		CreatedAt:         d.CreatedAt,
	}
}
