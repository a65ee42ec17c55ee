package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

func (r *GormRepo) FindDiscountByCode(ctx context.Context, code string, lock bool) (*models.Discount, error) {
	q := r.DB.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var d models.Discount
	if err := q.Where("UPPER(code) = UPPER(?)", code).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// ConsumeDiscount adds one use. It reports false when the usage limit has
// already been reached.
func (r *GormRepo) ConsumeDiscount(ctx context.Context, discountID uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Discount{}).
		Where("id = ? AND (usage_limit IS NULL OR used_count < usage_limit)", discountID).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) CreateDiscount(ctx context.Context, d *models.Discount) error {
	return translate(r.DB.WithContext(ctx).Create(d).Error)
}

func (r *GormRepo) ListDiscounts(ctx context.Context, limit, offset int) ([]models.Discount, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Discount{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Discount
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
