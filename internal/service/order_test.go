package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/testdb"
	"github.com/Skotchmaster/apparel_shop/internal/util"
)

func TestCancelMine_Restocks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tracked, _ := e.scenarioLine(2, testdb.IntPtr(5))
	untracked, _ := e.scenarioLine(1, nil)

	order, err := e.checkout.Checkout(ctx, e.userID, e.input())
	require.NoError(t, err)
	assert.Equal(t, 3, *testdb.Reload[models.ProductVariant](t, e.repo.DB, tracked.ID).Stock)

	cancelled, err := e.orders.CancelMine(ctx, e.userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	assert.Equal(t, 5, *testdb.Reload[models.ProductVariant](t, e.repo.DB, tracked.ID).Stock)
	assert.Nil(t, testdb.Reload[models.ProductVariant](t, e.repo.DB, untracked.ID).Stock)
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.Restocked))
	assert.Equal(t, []string{"order.created", "order.cancelled"}, e.pub.types())

	_, err = e.orders.CancelMine(ctx, e.userID, order.ID)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, 5, *testdb.Reload[models.ProductVariant](t, e.repo.DB, tracked.ID).Stock)
}

func TestCancelMine_SkipsDeletedVariant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v, _ := e.scenarioLine(1, testdb.IntPtr(1))

	order, err := e.checkout.Checkout(ctx, e.userID, e.input())
	require.NoError(t, err)
	require.NoError(t, e.repo.DB.Delete(&models.ProductVariant{}, v.ID).Error)

	cancelled, err := e.orders.CancelMine(ctx, e.userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
}

func TestCancelMine_OtherBuyer(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.scenarioLine(1, nil)
	order, err := e.checkout.Checkout(ctx, e.userID, e.input())
	require.NoError(t, err)

	_, err = e.orders.CancelMine(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = e.orders.GetMine(ctx, uuid.New(), order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	_, err = e.orders.Get(ctx, 424242)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_FollowsLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v, _ := e.scenarioLine(1, testdb.IntPtr(3))
	order, err := e.checkout.Checkout(ctx, e.userID, e.input())
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(ctx, order.ID, "teleported")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.orders.UpdateStatus(ctx, order.ID, "shipped")
	assert.ErrorIs(t, err, ErrIllegalTransition)

	for _, next := range []string{"processing", "shipped", "delivered"} {
		o, err := e.orders.UpdateStatus(ctx, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(next), o.Status)
	}

	_, err = e.orders.UpdateStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, 2, *testdb.Reload[models.ProductVariant](t, e.repo.DB, v.ID).Stock)
	assert.Equal(t, []string{"order.created", "order.status_changed", "order.status_changed", "order.status_changed"}, e.pub.types())
}

func TestListOrders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for range 3 {
		e.scenarioLine(1, nil)
		_, err := e.checkout.Checkout(ctx, e.userID, e.input())
		require.NoError(t, err)
	}
	seedOrder(t, e, "ORD-SOMEONE-ELSE")

	page, err := e.orders.ListMine(ctx, e.userID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Orders, 2)
	assert.Equal(t, 2, page.PageSize)

	rest, err := e.orders.ListMine(ctx, e.userID, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest.Orders, 1)

	all, err := e.orders.ListAll(ctx, "pending", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, util.DefaultPageSize, all.PageSize)

	_, err = e.orders.ListAll(ctx, "bogus", 1, 10)
	assert.ErrorIs(t, err, ErrValidation)
}
