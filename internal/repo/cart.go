package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

// GetOrCreateCart returns the user's cart, creating it on first access.
// A concurrent creator winning the insert race is not an error.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, translate(err)
	}

	cart = models.Cart{UserID: userID}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&cart).Error
	})
	if err == nil {
		return &cart, nil
	}
	if !isUniqueViolation(err) {
		return nil, translate(err)
	}

	var existing models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&existing).Error; err != nil {
		return nil, translate(err)
	}
	return &existing, nil
}

func (r *GormRepo) TouchCart(ctx context.Context, cartID uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("updated_at", at).Error
}

// ListCartLines joins the cart's items to their variants and products, most
// recently added first. ids restricts the result to those items when non-nil.
// lock takes row locks on the variants for the rest of the transaction.
func (r *GormRepo) ListCartLines(ctx context.Context, cartID uint, ids []uint, lock bool) ([]models.CartLine, error) {
	q := r.DB.WithContext(ctx).Where("cart_id = ?", cartID)
	if ids != nil {
		if len(ids) == 0 {
			return nil, nil
		}
		q = q.Where("id IN ?", ids)
	}

	var items []models.CartItem
	if err := q.Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	variantIDs := make([]uint, 0, len(items))
	for _, it := range items {
		variantIDs = append(variantIDs, it.VariantID)
	}

	vq := r.DB.WithContext(ctx)
	if lock {
		vq = vq.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var variants []models.ProductVariant
	if err := vq.Where("id IN ?", variantIDs).Order("id").Find(&variants).Error; err != nil {
		return nil, err
	}

	byVariant := make(map[uint]*models.ProductVariant, len(variants))
	productIDs := make([]uint, 0, len(variants))
	for i := range variants {
		byVariant[variants[i].ID] = &variants[i]
		productIDs = append(productIDs, variants[i].ProductID)
	}

	byProduct := map[uint]*models.Product{}
	if len(productIDs) > 0 {
		var products []models.Product
		if err := r.DB.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
			return nil, err
		}
		for i := range products {
			byProduct[products[i].ID] = &products[i]
		}
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		line := models.CartLine{Item: it}
		if v, ok := byVariant[it.VariantID]; ok {
			line.Variant = v
			line.Product = byProduct[v.ProductID]
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (r *GormRepo) FindCartItem(ctx context.Context, cartID, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) FindCartItemByVariant(ctx context.Context, cartID, variantID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("cart_id = ? AND variant_id = ?", cartID, variantID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) CreateCartItem(ctx context.Context, item *models.CartItem) error {
	return translate(r.DB.WithContext(ctx).Create(item).Error)
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, itemID uint, qty int) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty).Error
}

// DeleteCartItems removes the given items of one cart and reports how many
// rows actually went away.
func (r *GormRepo) DeleteCartItems(ctx context.Context, cartID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB.WithContext(ctx).
		Where("cart_id = ? AND id IN ?", cartID, ids).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
