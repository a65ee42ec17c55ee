// Package testdb opens migrated in-memory databases and seeds fixtures for
// tests of the storage-backed packages.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
)

// InitTestDB opens a private in-memory database. The pool is pinned to one
// connection so every query sees the same database; code under test must not
// touch the root handle while a transaction is open.
func InitTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

var skuSeq atomic.Int64

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func IntPtr(v int) *int { return &v }

type Fixtures struct {
	t  testing.TB
	DB *gorm.DB
}

func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, DB: db}
}

func (f *Fixtures) create(v any) {
	f.t.Helper()
	if err := f.DB.Create(v).Error; err != nil {
		f.t.Fatalf("seed %T: %v", v, err)
	}
}

func (f *Fixtures) Product(name, basePrice string, discountPercent int) *models.Product {
	f.t.Helper()
	p := &models.Product{
		Name:            name,
		Thumbnail:       "https://cdn.example.com/" + name + ".jpg",
		BasePrice:       Dec(basePrice),
		DiscountPercent: discountPercent,
		IsPublished:     true,
	}
	f.create(p)
	return p
}

func (f *Fixtures) Variant(p *models.Product, delta string, stock *int) *models.ProductVariant {
	f.t.Helper()
	v := &models.ProductVariant{
		ProductID:  p.ID,
		SKU:        fmt.Sprintf("SKU-%d", skuSeq.Add(1)),
		Attributes: datatypes.JSONMap{"size": "M", "color": "black"},
		PriceDelta: Dec(delta),
		Stock:      stock,
		IsActive:   true,
	}
	f.create(v)
	return v
}

func (f *Fixtures) Cart(userID uuid.UUID) *models.Cart {
	f.t.Helper()
	c := &models.Cart{UserID: userID}
	f.create(c)
	return c
}

func (f *Fixtures) CartItem(c *models.Cart, v *models.ProductVariant, qty int) *models.CartItem {
	f.t.Helper()
	it := &models.CartItem{CartID: c.ID, VariantID: v.ID, Quantity: qty}
	f.create(it)
	return it
}

func (f *Fixtures) Address(userID uuid.UUID) *models.ShippingAddress {
	f.t.Helper()
	a := &models.ShippingAddress{
		UserID:         userID,
		RecipientName:  "Nguyen Van A",
		RecipientPhone: "0901234567",
		FullAddress:    "12 Ly Thuong Kiet",
		Province:       "Ha Noi",
		Ward:           "Hang Bai",
		IsDefault:      true,
	}
	f.create(a)
	return a
}

func (f *Fixtures) Discount(d models.Discount) *models.Discount {
	f.t.Helper()
	f.create(&d)
	return &d
}

// Reload re-reads a row by primary key.
func Reload[T any](t testing.TB, db *gorm.DB, id uint) *T {
	t.Helper()
	var out T
	if err := db.First(&out, id).Error; err != nil {
		t.Fatalf("reload %T(%d): %v", out, id, err)
	}
	return &out
}

func Count[T any](t testing.TB, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(new(T)).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", *new(T), err)
	}
	return n
}
