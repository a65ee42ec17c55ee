package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// Discount codes are stored upper-cased so uniqueness is case-insensitive.
type Discount struct {
	ID                uint                `gorm:"primaryKey"                  json:"id"`
	Code              string              `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Kind              DiscountKind        `gorm:"size:20;not null"            json:"type"`
	Value             decimal.Decimal     `gorm:"type:numeric(15,2);not null" json:"value"`
	MaxDiscountAmount decimal.NullDecimal `gorm:"type:numeric(15,2)"          json:"max_discount_amount"`
	MinOrderValue     decimal.NullDecimal `gorm:"type:numeric(15,2)"          json:"min_order_value"`
	StartDate         *time.Time          `json:"start_date"`
	EndDate           *time.Time          `json:"end_date"`
	UsageLimit        *int                `json:"usage_limit"`
	UsedCount         int                 `gorm:"not null;default:0"          json:"used_count"`
	IsActive          bool                `gorm:"not null"                    json:"is_active"`
	CreatedAt         time.Time           `json:"created_at"`
}
