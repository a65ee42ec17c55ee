package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/apparel_shop/internal/discount"
	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/internal/util"
)

type DiscountService struct {
	repo *repo.GormRepo
}

func NewDiscountService(r *repo.GormRepo) *DiscountService {
	return &DiscountService{repo: r}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func (s *DiscountService) Create(ctx context.Context, req transport.CreateDiscountRequest) (*models.Discount, error) {
	code := discount.NormalizeCode(req.Code)
	if code == "" || len(code) > 50 {
		return nil, invalid("code must be 1-50 characters")
	}

	kind := models.DiscountKind(req.Type)
	switch kind {
	case models.DiscountPercentage:
		if req.Value.LessThanOrEqual(decimal.Zero) || req.Value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, invalid("percentage value must be in (0, 100]")
		}
	case models.DiscountFixed:
		if req.Value.LessThanOrEqual(decimal.Zero) {
			return nil, invalid("fixed value must be positive")
		}
	default:
		return nil, invalid("type must be percentage or fixed")
	}

	for name, v := range map[string]*decimal.Decimal{"max_discount_amount": req.MaxDiscountAmount, "min_order_value": req.MinOrderValue} {
		if v != nil && v.IsNegative() {
			return nil, invalid("%s must not be negative", name)
		}
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, invalid("end_date is before start_date")
	}
	if req.UsageLimit != nil && *req.UsageLimit < 0 {
		return nil, invalid("usage_limit must not be negative")
	}

	d := &models.Discount{
		Code:              code,
		Kind:              kind,
		Value:             req.Value,
		MaxDiscountAmount: nullDecimal(req.MaxDiscountAmount),
		MinOrderValue:     nullDecimal(req.MinOrderValue),
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		UsageLimit:        req.UsageLimit,
		IsActive:          req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.CreateDiscount(ctx, d); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDiscountExists
		}
		return nil, err
	}
	return d, nil
}

func (s *DiscountService) List(ctx context.Context, page, size int) (*transport.Page[transport.DiscountRead], error) {
	w := util.Paginate(page, size)
	list, total, err := s.repo.ListDiscounts(ctx, w.Size, w.Offset)
	if err != nil {
		return nil, err
	}
	out := &transport.Page[transport.DiscountRead]{
		Items:    make([]transport.DiscountRead, 0, len(list)),
		Total:    total,
		Page:     w.Page,
		PageSize: w.Size,
	}
	for i := range list {
		out.Items = append(out.Items, transport.NewDiscountRead(&list[i]))
	}
	return out, nil
}
