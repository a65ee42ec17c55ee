// Package discount validates promotional codes against an order subtotal.
// Evaluation never writes; usage is consumed by the checkout transaction.
package discount

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/pricing"
)

type Reason string

const (
	ReasonInvalidCode  Reason = "invalid_code"
	ReasonInactive     Reason = "inactive"
	ReasonNotStarted   Reason = "not_started"
	ReasonExpired      Reason = "expired"
	ReasonLimitReached Reason = "limit_reached"
	ReasonBelowMinimum Reason = "below_minimum"
)

type RejectedError struct {
	Reason Reason
	msg    string
}

func (e *RejectedError) Error() string { return e.msg }

var (
	ErrInvalidCode  = &RejectedError{Reason: ReasonInvalidCode, msg: "discount code does not exist"}
	ErrInactive     = &RejectedError{Reason: ReasonInactive, msg: "discount code is not active"}
	ErrNotStarted   = &RejectedError{Reason: ReasonNotStarted, msg: "discount code is not valid yet"}
	ErrExpired      = &RejectedError{Reason: ReasonExpired, msg: "discount code has expired"}
	ErrLimitReached = &RejectedError{Reason: ReasonLimitReached, msg: "discount code usage limit reached"}
	ErrBelowMinimum = &RejectedError{Reason: ReasonBelowMinimum, msg: "order subtotal is below the discount minimum"}
)

type Result struct {
	DiscountID uint
	Amount     decimal.Decimal
}

// NormalizeCode is the stored and looked-up form of a code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Evaluate checks d against now and subtotal. A nil d is an unknown code.
func Evaluate(d *models.Discount, now time.Time, subtotal decimal.Decimal) (Result, error) {
	if d == nil {
		return Result{}, ErrInvalidCode
	}
	if !d.IsActive {
		return Result{}, ErrInactive
	}
	if d.StartDate != nil && d.StartDate.After(now) {
		return Result{}, ErrNotStarted
	}
	if d.EndDate != nil && d.EndDate.Before(now) {
		return Result{}, ErrExpired
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return Result{}, ErrLimitReached
	}
	if d.MinOrderValue.Valid && subtotal.LessThan(d.MinOrderValue.Decimal) {
		return Result{}, ErrBelowMinimum
	}

	var amount decimal.Decimal
	switch d.Kind {
	case models.DiscountPercentage:
		amount = subtotal.Mul(d.Value).Div(decimal.NewFromInt(100))
		if d.MaxDiscountAmount.Valid && amount.GreaterThan(d.MaxDiscountAmount.Decimal) {
			amount = d.MaxDiscountAmount.Decimal
		}
	default:
		amount = d.Value
	}

	amount = pricing.Round2(amount)
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	return Result{DiscountID: d.ID, Amount: amount}, nil
}

type Finder interface {
	FindDiscountByCode(ctx context.Context, code string, lock bool) (*models.Discount, error)
}

// Validate looks the code up through f and evaluates it. lock is passed to
// the finder so a committing caller can hold the row until commit.
func Validate(ctx context.Context, f Finder, code string, now time.Time, subtotal decimal.Decimal, lock bool) (*models.Discount, Result, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, Result{}, ErrInvalidCode
	}
	d, err := f.FindDiscountByCode(ctx, code, lock)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Result{}, ErrInvalidCode
		}
		return nil, Result{}, err
	}
	res, err := Evaluate(d, now, subtotal)
	if err != nil {
		return nil, Result{}, err
	}
	return d, res, nil
}
