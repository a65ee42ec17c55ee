package service

import (
	"context"
	"errors"
	"maps"
	"strconv"
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
)

type CartService struct {
	repo      *repo.GormRepo
	publisher kafka.Publisher
	now       func() time.Time
}

func NewCartService(r *repo.GormRepo, p kafka.Publisher) *CartService {
	if p == nil {
		p = kafka.Noop{}
	}
	return &CartService{repo: r, publisher: p, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*transport.CartView, error) {
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *CartService) view(ctx context.Context, cart *models.Cart) (*transport.CartView, error) {
	lines, err := s.repo.ListCartLines(ctx, cart.ID, nil, false)
	if err != nil {
		return nil, err
	}

	out := &transport.CartView{
		CartID:    cart.ID,
		UpdatedAt: cart.UpdatedAt,
		Items:     make([]transport.CartLine, 0, len(lines)),
		Subtotal:  decimal.Zero,
	}
	for _, line := range lines {
		if !line.Resolved() {
			continue
		}
		v, p := line.Variant, line.Product
		unit := pricing.UnitPrice(p.BasePrice, v.PriceDelta, p.DiscountPercent)
		avail := pricing.Guard(line.Item.Quantity, v.Stock)
		lineTotal := pricing.LineTotal(unit, avail.Purchasable)

		out.Items = append(out.Items, transport.CartLine{
			CartItemID:          line.Item.ID,
			ProductVariantID:    v.ID,
			Quantity:            line.Item.Quantity,
			VariantAttributes:   maps.Clone(v.Attributes),
			AvailableStock:      v.Stock,
			PurchasableQuantity: avail.Purchasable,
			IsAvailable:         avail.Available,
			UnitPrice:           unit,
			LineTotal:           lineTotal,
			Product: transport.CartProduct{
				ProductID:       p.ID,
				Name:            p.Name,
				Thumbnail:       p.Thumbnail,
				Price:           pricing.ListPrice(p.BasePrice, v.PriceDelta),
				DiscountPercent: p.DiscountPercent,
				SalePrice:       pricing.SalePrice(p.BasePrice, v.PriceDelta, p.DiscountPercent),
			},
		})
		out.Subtotal = out.Subtotal.Add(lineTotal)
	}
	out.Subtotal = pricing.Round2(out.Subtotal)
	return out, nil
}

// AddItem puts qty units of a variant in the cart, merging with an existing
// line for the same variant.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, variantID uint, qty int) (*transport.CartView, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		v, p, err := tx.GetVariant(ctx, variantID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVariantNotFound
		}
		if err != nil {
			return err
		}
		if p == nil || !p.IsPublished || !v.IsActive {
			return &ProductError{Product: productName(p), Err: ErrProductUnavailable}
		}

		existing, err := tx.FindCartItemByVariant(ctx, cart.ID, variantID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		total := qty
		if existing != nil {
			total += existing.Quantity
		}
		if v.Stock != nil && total > *v.Stock {
			return &ProductError{Product: p.Name, Err: ErrInsufficientStock}
		}

		if existing != nil {
			err = tx.SetCartItemQuantity(ctx, existing.ID, total)
		} else {
			err = tx.CreateCartItem(ctx, &models.CartItem{CartID: cart.ID, VariantID: variantID, Quantity: qty})
		}
		if err != nil {
			return err
		}
		return tx.TouchCart(ctx, cart.ID, s.now())
	})
	if err != nil {
		return nil, conflictOrErr(err)
	}

	s.publish(ctx, "cart.item_added", userID, map[string]any{
		"cart_id": cart.ID, "variant_id": variantID, "quantity": qty,
	})
	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateItem(ctx context.Context, userID uuid.UUID, itemID uint, qty int) (*transport.CartView, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		item, err := tx.FindCartItem(ctx, cart.ID, itemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		if err != nil {
			return err
		}

		v, p, err := tx.GetVariant(ctx, item.VariantID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProductError{Err: ErrProductUnavailable}
		}
		if err != nil {
			return err
		}
		if v.Stock != nil && qty > *v.Stock {
			return &ProductError{Product: productName(p), Err: ErrInsufficientStock}
		}

		if err := tx.SetCartItemQuantity(ctx, item.ID, qty); err != nil {
			return err
		}
		return tx.TouchCart(ctx, cart.ID, s.now())
	})
	if err != nil {
		return nil, conflictOrErr(err)
	}

	s.publish(ctx, "cart.item_updated", userID, map[string]any{
		"cart_id": cart.ID, "cart_item_id": itemID, "quantity": qty,
	})
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uint) (*transport.CartView, error) {
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		n, err := tx.DeleteCartItems(ctx, cart.ID, []uint{itemID})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCartItemNotFound
		}
		return tx.TouchCart(ctx, cart.ID, s.now())
	})
	if err != nil {
		return nil, conflictOrErr(err)
	}

	s.publish(ctx, "cart.item_removed", userID, map[string]any{"cart_id": cart.ID, "cart_item_id": itemID})
	return s.GetCart(ctx, userID)
}

// PreviewDiscount evaluates code against the selected lines without
// consuming it. ids nil selects the whole cart.
func (s *CartService) PreviewDiscount(ctx context.Context, userID uuid.UUID, code string, ids []uint) (*transport.DiscountPreview, error) {
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	priced, err := collectLines(ctx, s.repo, cart.ID, ids, false)
	if err != nil {
		return nil, err
	}

	d, res, err := discount.Validate(ctx, s.repo, code, s.now(), priced.subtotal, false)
	if err != nil {
		return nil, err
	}
	return &transport.DiscountPreview{
		DiscountID:     d.ID,
		Code:           d.Code,
		Type:           string(d.Kind),
		Value:          d.Value,
		Subtotal:       priced.subtotal,
		DiscountAmount: res.Amount,
	}, nil
}

func (s *CartService) publish(ctx context.Context, eventType string, userID uuid.UUID, payload map[string]any) {
	payload["user_id"] = userID.String()
	if err := s.publisher.PublishEvent(ctx, kafka.TopicCartEvents, userID.String(), kafka.NewEvent(eventType, payload)); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "type", eventType, "error", err)
	}
}

func productName(p *models.Product) string {
	if p == nil {
		return ""
	}
	return p.Name
}

// conflictOrErr folds storage-level races into the retryable error.
func conflictOrErr(err error) error {
	if errors.Is(err, repo.ErrTransient) || errors.Is(err, repo.ErrDuplicate) {
		return ErrRetryableConflict
	}
	return err
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
