package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/discount"
	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/pricing"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/transport"
	"github.com/Skotchmaster/apparel_shop/pkg/kafka"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
	"github.com/Skotchmaster/apparel_shop/pkg/metrics"
)

const orderCodeAttempts = 3

// NewOrderCode renders ORD-<yyyymmddhhmmss>-<4 digits>.
func NewOrderCode(at time.Time) string {
	return fmt.Sprintf("ORD-%s-%04d", at.UTC().Format("20060102150405"), 1000+rand.IntN(9000))
}

type CheckoutService struct {
	repo        *repo.GormRepo
	publisher   kafka.Publisher
	metrics     *metrics.ServerMetrics
	shippingFee decimal.Decimal

	now     func() time.Time
	newCode func(time.Time) string
}

type CheckoutOption func(*CheckoutService)

func WithClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) { s.now = now }
}

func WithOrderCodes(gen func(time.Time) string) CheckoutOption {
	return func(s *CheckoutService) { s.newCode = gen }
}

func WithMetrics(m *metrics.ServerMetrics) CheckoutOption {
	return func(s *CheckoutService) { s.metrics = m }
}

// WithDefaultShippingFee sets the fee charged when a request carries none.
func WithDefaultShippingFee(fee decimal.Decimal) CheckoutOption {
	return func(s *CheckoutService) { s.shippingFee = fee }
}

func NewCheckoutService(r *repo.GormRepo, p kafka.Publisher, opts ...CheckoutOption) *CheckoutService {
	if p == nil {
		p = kafka.Noop{}
	}
	s := &CheckoutService{
		repo:      r,
		publisher: p,
		now:       utcNow,
		newCode:   NewOrderCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type pricedLine struct {
	line      models.CartLine
	unitPrice decimal.Decimal
	lineTotal decimal.Decimal
}

type pricedSelection struct {
	lines    []pricedLine
	subtotal decimal.Decimal
}

func (p pricedSelection) itemIDs() []uint {
	ids := make([]uint, 0, len(p.lines))
	for _, l := range p.lines {
		ids = append(ids, l.line.Item.ID)
	}
	return ids
}

// collectLines loads and prices the selected cart lines, failing on the first
// line that cannot be bought in full.
func collectLines(ctx context.Context, r *repo.GormRepo, cartID uint, ids []uint, lock bool) (pricedSelection, error) {
	if ids != nil && len(ids) == 0 {
		return pricedSelection{}, ErrEmptySelection
	}
	lines, err := r.ListCartLines(ctx, cartID, ids, lock)
	if err != nil {
		return pricedSelection{}, err
	}
	if len(lines) == 0 {
		return pricedSelection{}, ErrEmptySelection
	}

	out := pricedSelection{lines: make([]pricedLine, 0, len(lines)), subtotal: decimal.Zero}
	for _, line := range lines {
		if !line.Resolved() {
			return pricedSelection{}, &ProductError{Product: productName(line.Product), Err: ErrProductUnavailable}
		}
		v, p := line.Variant, line.Product
		if !v.IsActive || !p.IsPublished {
			return pricedSelection{}, &ProductError{Product: p.Name, Err: ErrProductUnavailable}
		}
		if avail := pricing.Guard(line.Item.Quantity, v.Stock); !avail.Available || avail.Purchasable < line.Item.Quantity {
			return pricedSelection{}, &ProductError{Product: p.Name, Err: ErrInsufficientStock}
		}

		unit := pricing.UnitPrice(p.BasePrice, v.PriceDelta, p.DiscountPercent)
		total := pricing.LineTotal(unit, line.Item.Quantity)
		out.lines = append(out.lines, pricedLine{line: line, unitPrice: unit, lineTotal: total})
		out.subtotal = out.subtotal.Add(total)
	}
	out.subtotal = pricing.Round2(out.subtotal)
	return out, nil
}

type CheckoutInput struct {
	ShippingAddressID uint
	PaymentMethod     models.PaymentMethod
	// nil checks out the whole cart
	CartItemIDs  []uint
	DiscountCode string
	ShippingFee  *decimal.Decimal
	Note         string
}

func CheckoutInputFrom(req transport.CheckoutRequest) CheckoutInput {
	return CheckoutInput{
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethod:     models.PaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod))),
		CartItemIDs:       req.CartItemIDs,
		DiscountCode:      req.DiscountCode,
		ShippingFee:       req.ShippingFee,
		Note:              strings.TrimSpace(req.Note),
	}
}

// Checkout turns the selected cart lines into an order in one transaction:
// stock, discount usage and cart contents change together or not at all.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, in CheckoutInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("op", "checkout")

	order, err := s.checkout(ctx, userID, in)
	if err != nil {
		outcome := checkoutOutcome(err)
		s.metrics.ObserveCheckout(outcome)
		l.Info("checkout_rejected", "outcome", outcome, "error", err)
		return nil, err
	}
	s.metrics.ObserveCheckout("success")
	l.Info("checkout_success", "order_id", order.ID, "code", order.Code, "total", order.TotalPrice.String())

	payload := map[string]any{
		"order_id":    order.ID,
		"code":        order.Code,
		"user_id":     userID.String(),
		"total_price": order.TotalPrice.String(),
		"items":       len(order.Items),
	}
	if order.DiscountID != nil {
		payload["discount_id"] = *order.DiscountID
	}
	if err := s.publisher.PublishEvent(ctx, kafka.TopicOrderEvents, idKey(order.ID), kafka.NewEvent("order.created", payload)); err != nil {
		l.Warn("publish_event_error", "type", "order.created", "error", err)
	}
	return order, nil
}

func (s *CheckoutService) checkout(ctx context.Context, userID uuid.UUID, in CheckoutInput) (*models.Order, error) {
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPayment
	}
	fee := s.shippingFee
	if in.ShippingFee != nil {
		fee = *in.ShippingFee
	}
	fee = pricing.Round2(decimal.Max(fee, decimal.Zero))

	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, conflictOrErr(err)
	}

	var order *models.Order
	err = s.repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		now := s.now()

		addr, err := tx.FindShippingAddress(ctx, in.ShippingAddressID, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidShippingTarget
		}
		if err != nil {
			return err
		}

		sel, err := collectLines(ctx, tx, cart.ID, in.CartItemIDs, true)
		if err != nil {
			return err
		}

		var applied *models.Discount
		amount := decimal.Zero
		if strings.TrimSpace(in.DiscountCode) != "" {
			d, res, err := discount.Validate(ctx, tx, in.DiscountCode, now, sel.subtotal, true)
			if err != nil {
				return err
			}
			applied, amount = d, res.Amount
		}

		total := decimal.Max(sel.subtotal.Sub(amount).Add(fee), decimal.Zero)

		o := &models.Order{
			UserID:              userID,
			ShippingAddressID:   addr.ID,
			RecipientName:       addr.RecipientName,
			RecipientPhone:      addr.RecipientPhone,
			ShippingAddressFull: addr.FullAddress,
			ShippingProvince:    addr.Province,
			ShippingWard:        addr.Ward,
			Subtotal:            sel.subtotal,
			DiscountAmount:      amount,
			ShippingFee:         fee,
			TotalPrice:          pricing.Round2(total),
			PaymentMethod:       in.PaymentMethod,
			PaymentStatus:       models.PaymentStatusUnpaid,
			Status:              models.OrderStatusPending,
			Note:                in.Note,
		}
		if applied != nil {
			o.DiscountID = &applied.ID
		}
		if err := s.insertOrder(ctx, tx, o, now); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(sel.lines))
		for _, pl := range sel.lines {
			variantID := pl.line.Variant.ID
			items = append(items, models.OrderItem{
				OrderID:                   o.ID,
				VariantID:                 &variantID,
				ProductName:               pl.line.Product.Name,
				VariantAttributesSnapshot: maps.Clone(pl.line.Variant.Attributes),
				Quantity:                  pl.line.Item.Quantity,
				UnitPrice:                 pl.unitPrice,
				TotalPrice:                pl.lineTotal,
			})
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return err
		}

		for _, pl := range sel.lines {
			if pl.line.Variant.Stock == nil {
				continue
			}
			ok, err := tx.DecrementStock(ctx, pl.line.Variant.ID, pl.line.Item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &ProductError{Product: pl.line.Product.Name, Err: ErrInsufficientStock, Retryable: true}
			}
		}

		ids := sel.itemIDs()
		n, err := tx.DeleteCartItems(ctx, cart.ID, ids)
		if err != nil {
			return err
		}
		if n != int64(len(ids)) {
			// another checkout already took these lines
			return ErrRetryableConflict
		}

		if applied != nil {
			ok, err := tx.ConsumeDiscount(ctx, applied.ID)
			if err != nil {
				return err
			}
			if !ok {
				return discount.ErrLimitReached
			}
			applied.UsedCount++
		}

		if err := tx.TouchCart(ctx, cart.ID, now); err != nil {
			return err
		}

		o.Items = items
		order = o
		return nil
	})
	if err != nil {
		return nil, conflictOrErr(err)
	}
	return order, nil
}

// insertOrder assigns a fresh code and inserts o, regenerating the code when
// it collides with an existing order.
func (s *CheckoutService) insertOrder(ctx context.Context, tx *repo.GormRepo, o *models.Order, now time.Time) error {
	for range orderCodeAttempts {
		o.Code = s.newCode(now)
		err := tx.CreateOrder(ctx, o)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repo.ErrDuplicate) {
			return err
		}
		o.ID = 0
	}
	return ErrRetryableConflict
}

func checkoutOutcome(err error) string {
	var rej *discount.RejectedError
	switch {
	case errors.As(err, &rej):
		return "discount_rejected"
	case errors.Is(err, ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, ErrProductUnavailable):
		return "product_unavailable"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return "invalid"
	}
	return "error"
}
