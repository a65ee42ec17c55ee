package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

// GetVariant returns the variant and its product. The product is nil when it
// has been deleted.
func (r *GormRepo) GetVariant(ctx context.Context, variantID uint) (*models.ProductVariant, *models.Product, error) {
	var v models.ProductVariant
	if err := r.DB.WithContext(ctx).First(&v, variantID).Error; err != nil {
		return nil, nil, err
	}

	var p models.Product
	err := r.DB.WithContext(ctx).First(&p, v.ProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &v, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &v, &p, nil
}

// DecrementStock takes qty units from a tracked variant. It reports false and
// changes nothing when fewer than qty units remain.
func (r *GormRepo) DecrementStock(ctx context.Context, variantID uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ? AND stock IS NOT NULL AND stock >= ?", variantID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RestockVariant returns qty units to a tracked variant. Untracked or deleted
// variants are left alone and reported as false.
func (r *GormRepo) RestockVariant(ctx context.Context, variantID uint, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.ProductVariant{}).
		Where("id = ? AND stock IS NOT NULL", variantID).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}
