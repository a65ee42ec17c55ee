package discount

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func activeDiscount(kind models.DiscountKind, value string) *models.Discount {
	return &models.Discount{ID: 7, Code: "SALE", Kind: kind, Value: dec(value), IsActive: true}
}

func TestEvaluate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(d *models.Discount)
		want   *RejectedError
	}{
		{"inactive", func(d *models.Discount) { d.IsActive = false }, ErrInactive},
		{"not started", func(d *models.Discount) { d.StartDate = timePtr(now.Add(time.Hour)) }, ErrNotStarted},
		{"expired", func(d *models.Discount) { d.EndDate = timePtr(now.Add(-time.Second)) }, ErrExpired},
		{"limit reached", func(d *models.Discount) { d.UsageLimit = intPtr(1); d.UsedCount = 1 }, ErrLimitReached},
		{"below minimum", func(d *models.Discount) { d.MinOrderValue = nullDec("200") }, ErrBelowMinimum},
		{"inactive wins over expired", func(d *models.Discount) {
			d.IsActive = false
			d.EndDate = timePtr(now.Add(-time.Hour))
		}, ErrInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := activeDiscount(models.DiscountFixed, "10")
			tt.mutate(d)

			_, err := Evaluate(d, now, dec("176"))

			var rej *RejectedError
			require.True(t, errors.As(err, &rej))
			assert.Equal(t, tt.want.Reason, rej.Reason)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEvaluate_NilIsInvalidCode(t *testing.T) {
	_, err := Evaluate(nil, now, dec("100"))
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestEvaluate_Amounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		d        *models.Discount
		subtotal string
		want     string
	}{
		{"fixed", activeDiscount(models.DiscountFixed, "50"), "176", "50"},
		{"fixed clamped to subtotal", activeDiscount(models.DiscountFixed, "500"), "176", "176"},
		{"percentage", activeDiscount(models.DiscountPercentage, "10"), "176", "17.6"},
		{"percentage capped", func() *models.Discount {
			d := activeDiscount(models.DiscountPercentage, "10")
			d.MaxDiscountAmount = nullDec("5")
			return d
		}(), "1000", "5"},
		{"percentage rounds", activeDiscount(models.DiscountPercentage, "15"), "0.33", "0.05"},
		{"window boundaries inclusive", func() *models.Discount {
			d := activeDiscount(models.DiscountFixed, "1")
			d.StartDate = timePtr(now)
			d.EndDate = timePtr(now)
			return d
		}(), "10", "1"},
		{"exactly at minimum", func() *models.Discount {
			d := activeDiscount(models.DiscountFixed, "20")
			d.MinOrderValue = nullDec("176")
			return d
		}(), "176", "20"},
		{"under limit", func() *models.Discount {
			d := activeDiscount(models.DiscountFixed, "20")
			d.UsageLimit = intPtr(2)
			d.UsedCount = 1
			return d
		}(), "176", "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Evaluate(tt.d, now, dec(tt.subtotal))
			require.NoError(t, err)
			assert.Equal(t, uint(7), res.DiscountID)
			assert.True(t, dec(tt.want).Equal(res.Amount), "want %s got %s", tt.want, res.Amount)
		})
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	d := activeDiscount(models.DiscountPercentage, "12.5")
	d.UsageLimit = intPtr(3)
	d.UsedCount = 2

	first, err1 := Evaluate(d, now, dec("999.99"))
	second, err2 := Evaluate(d, now, dec("999.99"))

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, d.UsedCount)
}

type fakeFinder struct {
	byCode map[string]*models.Discount
	err    error
	seen   []string
	locked bool
}

func (f *fakeFinder) FindDiscountByCode(_ context.Context, code string, lock bool) (*models.Discount, error) {
	f.seen = append(f.seen, code)
	f.locked = lock
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.byCode[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func TestValidate(t *testing.T) {
	f := &fakeFinder{byCode: map[string]*models.Discount{"SALE": activeDiscount(models.DiscountFixed, "50")}}

	d, res, err := Validate(context.Background(), f, "  sale ", now, dec("176"), true)
	require.NoError(t, err)
	assert.Equal(t, "SALE", d.Code)
	assert.True(t, dec("50").Equal(res.Amount))
	assert.Equal(t, []string{"SALE"}, f.seen)
	assert.True(t, f.locked)

	_, _, err = Validate(context.Background(), f, "nope", now, dec("176"), false)
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, _, err = Validate(context.Background(), f, "   ", now, dec("176"), false)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestValidate_StorageError(t *testing.T) {
	boom := errors.New("connection reset")
	f := &fakeFinder{err: boom}

	_, _, err := Validate(context.Background(), f, "SALE", now, dec("1"), false)
	assert.ErrorIs(t, err, boom)
}
