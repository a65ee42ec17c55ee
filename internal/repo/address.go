package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

func (r *GormRepo) FindShippingAddress(ctx context.Context, id uint, userID uuid.UUID) (*models.ShippingAddress, error) {
	var a models.ShippingAddress
	if err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
