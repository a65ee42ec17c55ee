package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/testdb"
	"github.com/Skotchmaster/apparel_shop/pkg/kafka"
	"github.com/Skotchmaster/apparel_shop/pkg/metrics"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.Event
	topics []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, e kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	repo     *repo.GormRepo
	fx       *testdb.Fixtures
	pub      *recordingPublisher
	metrics  *metrics.ServerMetrics
	cart     *CartService
	checkout *CheckoutService
	orders   *OrderService
	userID   uuid.UUID
	address  *models.ShippingAddress
	userCart *models.Cart
}

func newEnv(t *testing.T, opts ...CheckoutOption) *env {
	t.Helper()
	db := testdb.InitTestDB(t)
	r := repo.New(db)
	pub := &recordingPublisher{}
	m := metrics.NewServerMetrics("test", prometheus.NewRegistry())

	opts = append([]CheckoutOption{WithClock(func() time.Time { return fixedNow }), WithMetrics(m)}, opts...)

	e := &env{
		repo:     r,
		fx:       testdb.NewFixtures(t, db),
		pub:      pub,
		metrics:  m,
		cart:     NewCartService(r, pub),
		checkout: NewCheckoutService(r, pub, opts...),
		orders:   NewOrderService(r, pub, m),
		userID:   uuid.New(),
	}
	e.cart.now = func() time.Time { return fixedNow }
	e.address = e.fx.Address(e.userID)
	e.userCart = e.fx.Cart(e.userID)
	return e
}

// scenarioLine seeds base 100.00, delta 10.00, 20% off: unit price 88.00.
func (e *env) scenarioLine(qty int, stock *int) (*models.ProductVariant, *models.CartItem) {
	p := e.fx.Product("linen shirt", "100", 20)
	v := e.fx.Variant(p, "10", stock)
	it := e.fx.CartItem(e.userCart, v, qty)
	return v, it
}

func (e *env) input() CheckoutInput {
	return CheckoutInput{ShippingAddressID: e.address.ID, PaymentMethod: models.PaymentCOD}
}

func decimalNull(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: testdb.Dec(s), Valid: true}
}
