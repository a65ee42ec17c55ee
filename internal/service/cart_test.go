package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/apparel_shop/internal/discount"
	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/testdb"
)

func TestGetCart_PricesLines(t *testing.T) {
	e := newEnv(t)
	v, it := e.scenarioLine(2, nil)

	view, err := e.cart.GetCart(context.Background(), e.userID)
	require.NoError(t, err)

	assert.Equal(t, e.userCart.ID, view.CartID)
	require.Len(t, view.Items, 1)
	line := view.Items[0]
	assert.Equal(t, it.ID, line.CartItemID)
	assert.Equal(t, v.ID, line.ProductVariantID)
	assert.True(t, testdb.Dec("88").Equal(line.UnitPrice))
	assert.True(t, testdb.Dec("176").Equal(line.LineTotal))
	assert.Equal(t, 2, line.PurchasableQuantity)
	assert.True(t, line.IsAvailable)
	assert.Nil(t, line.AvailableStock)
	assert.Equal(t, "M", line.VariantAttributes["size"])
	assert.True(t, testdb.Dec("110").Equal(line.Product.Price))
	require.NotNil(t, line.Product.SalePrice)
	assert.True(t, testdb.Dec("88").Equal(*line.Product.SalePrice))
	assert.True(t, line.UnitPrice.Equal(*line.Product.SalePrice))
	assert.True(t, testdb.Dec("176").Equal(view.Subtotal))
}

func TestGetCart_CreatesCartOnFirstAccess(t *testing.T) {
	e := newEnv(t)
	stranger := uuid.New()

	first, err := e.cart.GetCart(context.Background(), stranger)
	require.NoError(t, err)
	second, err := e.cart.GetCart(context.Background(), stranger)
	require.NoError(t, err)

	assert.Equal(t, first.CartID, second.CartID)
	assert.Empty(t, first.Items)
	assert.True(t, first.Subtotal.IsZero())
}

func TestGetCart_OmitsDeletedVariant(t *testing.T) {
	e := newEnv(t)
	e.scenarioLine(1, nil)
	gone, _ := e.scenarioLine(3, nil)
	require.NoError(t, e.repo.DB.Delete(&models.ProductVariant{}, gone.ID).Error)

	view, err := e.cart.GetCart(context.Background(), e.userID)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.True(t, testdb.Dec("88").Equal(view.Subtotal))
}

func TestGetCart_DegradesWhenStockShrinks(t *testing.T) {
	e := newEnv(t)
	low, _ := e.scenarioLine(3, testdb.IntPtr(1))
	e.scenarioLine(2, testdb.IntPtr(0))

	view, err := e.cart.GetCart(context.Background(), e.userID)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	soldOut, capped := view.Items[0], view.Items[1]
	assert.Equal(t, low.ID, capped.ProductVariantID)
	assert.Equal(t, 3, capped.Quantity)
	assert.Equal(t, 1, capped.PurchasableQuantity)
	assert.True(t, capped.IsAvailable)
	assert.True(t, testdb.Dec("88").Equal(capped.LineTotal))

	assert.Equal(t, 0, soldOut.PurchasableQuantity)
	assert.False(t, soldOut.IsAvailable)
	assert.True(t, soldOut.LineTotal.IsZero())

	assert.True(t, testdb.Dec("88").Equal(view.Subtotal))
}

func TestAddItem_MergesSameVariant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.fx.Product("chino", "350000", 0)
	v := e.fx.Variant(p, "0", testdb.IntPtr(5))

	_, err := e.cart.AddItem(ctx, e.userID, v.ID, 2)
	require.NoError(t, err)
	view, err := e.cart.AddItem(ctx, e.userID, v.ID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, []string{"cart.item_added", "cart.item_added"}, e.pub.types())

	_, err = e.cart.AddItem(ctx, e.userID, v.ID, 1)
	var perr *ProductError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "chino", perr.Product)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestAddItem_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	hidden := e.fx.Product("draft", "1000", 0)
	require.NoError(t, e.repo.DB.Model(hidden).Update("is_published", false).Error)
	hv := e.fx.Variant(hidden, "0", nil)

	p := e.fx.Product("scarf", "1000", 0)
	inactive := e.fx.Variant(p, "0", nil)
	require.NoError(t, e.repo.DB.Model(inactive).Update("is_active", false).Error)

	_, err := e.cart.AddItem(ctx, e.userID, 9999, 1)
	assert.ErrorIs(t, err, ErrVariantNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.cart.AddItem(ctx, e.userID, hv.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = e.cart.AddItem(ctx, e.userID, inactive.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = e.cart.AddItem(ctx, e.userID, inactive.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, it := e.scenarioLine(1, testdb.IntPtr(4))

	view, err := e.cart.UpdateItem(ctx, e.userID, it.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)

	_, err = e.cart.UpdateItem(ctx, e.userID, it.ID, 5)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = e.cart.UpdateItem(ctx, uuid.New(), it.ID, 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	view, err = e.cart.RemoveItem(ctx, e.userID, it.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = e.cart.RemoveItem(ctx, e.userID, it.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	assert.Equal(t, []string{"cart.item_updated", "cart.item_removed"}, e.pub.types())
}

func TestPreviewDiscount(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, first := e.scenarioLine(2, nil)
	e.scenarioLine(1, nil)
	e.fx.Discount(models.Discount{Code: "TENOFF", Kind: models.DiscountPercentage, Value: testdb.Dec("10"), IsActive: true})

	all, err := e.cart.PreviewDiscount(ctx, e.userID, "tenoff", nil)
	require.NoError(t, err)
	assert.True(t, testdb.Dec("264").Equal(all.Subtotal))
	assert.True(t, testdb.Dec("26.4").Equal(all.DiscountAmount))

	subset, err := e.cart.PreviewDiscount(ctx, e.userID, "TENOFF", []uint{first.ID})
	require.NoError(t, err)
	assert.True(t, testdb.Dec("176").Equal(subset.Subtotal))
	assert.True(t, testdb.Dec("17.6").Equal(subset.DiscountAmount))

	again, err := e.cart.PreviewDiscount(ctx, e.userID, "TENOFF", []uint{first.ID})
	require.NoError(t, err)
	assert.Equal(t, subset, again)

	_, err = e.cart.PreviewDiscount(ctx, e.userID, "TENOFF", []uint{})
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = e.cart.PreviewDiscount(ctx, e.userID, "UNKNOWN", nil)
	assert.ErrorIs(t, err, discount.ErrInvalidCode)
}

func TestPreviewDiscount_LimitReachedLeavesUsage(t *testing.T) {
	e := newEnv(t)
	e.scenarioLine(2, nil)
	d := e.fx.Discount(models.Discount{
		Code: "ONCE", Kind: models.DiscountFixed, Value: testdb.Dec("50"),
		UsageLimit: testdb.IntPtr(1), UsedCount: 1, IsActive: true,
	})

	_, err := e.cart.PreviewDiscount(context.Background(), e.userID, "ONCE", nil)
	assert.ErrorIs(t, err, discount.ErrLimitReached)
	assert.Equal(t, 1, testdb.Reload[models.Discount](t, e.repo.DB, d.ID).UsedCount)
}
