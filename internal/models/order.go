package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

const PaymentStatusUnpaid = "unpaid"

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "cod"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCard         PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCOD || m == PaymentBankTransfer || m == PaymentCard
}

type Order struct {
	ID                uint      `gorm:"primaryKey"                  json:"id"`
	Code              string    `gorm:"size:50;uniqueIndex;not null" json:"code"`
	UserID            uuid.UUID `gorm:"type:uuid;index;not null"    json:"user_id"`
	ShippingAddressID uint      `gorm:"not null"                    json:"shipping_address_id"`
	DiscountID        *uint     `gorm:"index"                       json:"discount_id"`

	RecipientName       string `gorm:"size:255;not null" json:"recipient_name"`
	RecipientPhone      string `gorm:"size:20;not null"  json:"recipient_phone"`
	ShippingAddressFull string `gorm:"size:500;not null" json:"shipping_address_full"`
	ShippingProvince    string `gorm:"size:100"          json:"shipping_province"`
	ShippingWard        string `gorm:"size:100"          json:"shipping_ward"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"subtotal"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"discount_amount"`
	ShippingFee    decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"shipping_fee"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(15,2);not null" json:"total_price"`

	PaymentMethod PaymentMethod `gorm:"size:50;not null"       json:"payment_method"`
	PaymentStatus string        `gorm:"size:20;not null"       json:"payment_status"`
	Status        OrderStatus   `gorm:"size:20;not null;index" json:"status"`
	Note          string        `gorm:"type:text"              json:"note"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
}

// OrderItem is written once at checkout and never updated.
type OrderItem struct {
	ID                        uint              `gorm:"primaryKey"                  json:"id"`
	OrderID                   uint              `gorm:"index;not null"              json:"order_id"`
	VariantID                 *uint             `gorm:"index"                       json:"product_variant_id"`
	ProductName               string            `gorm:"size:255;not null"           json:"product_name"`
	VariantAttributesSnapshot datatypes.JSONMap `json:"variant_attributes_snapshot"`
	Quantity                  int               `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice                 decimal.Decimal   `gorm:"type:numeric(15,2);not null" json:"unit_price"`
	TotalPrice                decimal.Decimal   `gorm:"type:numeric(15,2);not null" json:"total_price"`
	CreatedAt                 time.Time         `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
