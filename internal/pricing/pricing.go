// Package pricing computes effective unit prices and purchasable quantities
// for product variants.
package pricing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Round2 rounds to two decimal places, halves away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// UnitPrice is (base + delta) reduced by the product-level sale percent.
func UnitPrice(base, delta decimal.Decimal, discountPercent int) decimal.Decimal {
	gross := base.Add(delta)
	if gross.IsNegative() {
		gross = decimal.Zero
	}
	if discountPercent > 0 {
		if discountPercent > 100 {
			discountPercent = 100
		}
		gross = gross.Mul(decimal.NewFromInt(int64(100 - discountPercent))).Div(hundred)
	}
	return Round2(gross)
}

// ListPrice is base + delta before any sale, never below zero.
func ListPrice(base, delta decimal.Decimal) decimal.Decimal {
	return Round2(decimal.Max(base.Add(delta), decimal.Zero))
}

// SalePrice is the variant's sale price, or nil when the product is not on sale.
func SalePrice(base, delta decimal.Decimal, discountPercent int) *decimal.Decimal {
	if discountPercent <= 0 {
		return nil
	}
	p := UnitPrice(base, delta, discountPercent)
	return &p
}

func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return Round2(unit.Mul(decimal.NewFromInt(int64(qty))))
}

type Availability struct {
	// Purchasable is the requested quantity capped to stock on hand.
	Purchasable int
	Available   bool
}

// Guard caps a requested quantity to the variant's stock. Untracked stock
// (nil) never caps and is always available.
func Guard(requested int, stock *int) Availability {
	if stock == nil {
		return Availability{Purchasable: requested, Available: true}
	}
	onHand := max(*stock, 0)
	return Availability{
		Purchasable: min(requested, onHand),
		Available:   onHand > 0,
	}
}
