package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// Transaction runs fn against a repo bound to a single database transaction.
// Inside fn only tx may be used.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	err := r.DB.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&GormRepo{DB: db})
	})
	return translate(err)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Cart{},
		&models.CartItem{},
		&models.ShippingAddress{},
		&models.Discount{},
		&models.Order{},
		&models.OrderItem{},
	)
}
