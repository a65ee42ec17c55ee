package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/apparel_shop/internal/models"
	"github.com/Skotchmaster/apparel_shop/internal/repo"
	"github.com/Skotchmaster/apparel_shop/internal/util"
	"github.com/Skotchmaster/apparel_shop/pkg/kafka"
	"github.com/Skotchmaster/apparel_shop/pkg/logging"
	"github.com/Skotchmaster/apparel_shop/pkg/metrics"
)

type OrderService struct {
	repo      *repo.GormRepo
	publisher kafka.Publisher
	metrics   *metrics.ServerMetrics
}

func NewOrderService(r *repo.GormRepo, p kafka.Publisher, m *metrics.ServerMetrics) *OrderService {
	if p == nil {
		p = kafka.Noop{}
	}
	return &OrderService{repo: r, publisher: p, metrics: m}
}

type OrderPage struct {
	Orders   []models.Order
	Total    int64
	Page     int
	PageSize int
}

func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID, page, size int) (*OrderPage, error) {
	return s.list(ctx, repo.OrderFilter{UserID: &userID}, page, size)
}

func (s *OrderService) ListAll(ctx context.Context, status string, page, size int) (*OrderPage, error) {
	f := repo.OrderFilter{Status: models.OrderStatus(status)}
	if status != "" && !f.Status.Valid() {
		return nil, invalid("unknown status %q", status)
	}
	return s.list(ctx, f, page, size)
}

func (s *OrderService) list(ctx context.Context, f repo.OrderFilter, page, size int) (*OrderPage, error) {
	w := util.Paginate(page, size)
	orders, total, err := s.repo.ListOrders(ctx, f, w.Size, w.Offset)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total, Page: w.Page, PageSize: w.Size}, nil
}

// GetMine returns the order only when userID owns it.
func (s *OrderService) GetMine(ctx context.Context, userID uuid.UUID, id uint) (*models.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.repo.GetOrder(ctx, id, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) CancelMine(ctx context.Context, userID uuid.UUID, id uint) (*models.Order, error) {
	return s.transition(ctx, id, &userID, models.OrderStatusCancelled)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	to := models.OrderStatus(status)
	if !to.Valid() {
		return nil, invalid("unknown status %q", status)
	}
	return s.transition(ctx, id, nil, to)
}

// transition moves an order along the status machine. Cancelling puts the
// ordered quantities back on tracked variants in the same transaction.
func (s *OrderService) transition(ctx context.Context, id uint, owner *uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	var (
		order     *models.Order
		from      models.OrderStatus
		restocked int
	)
	err := s.repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.GetOrder(ctx, id, true)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if owner != nil && o.UserID != *owner {
			return ErrOrderNotFound
		}
		if !o.Status.CanTransitionTo(to) {
			return ErrIllegalTransition
		}

		ok, err := tx.UpdateOrderStatus(ctx, o.ID, o.Status, to)
		if err != nil {
			return err
		}
		if !ok {
			return ErrRetryableConflict
		}

		if to == models.OrderStatusCancelled {
			for _, it := range o.Items {
				if it.VariantID == nil {
					continue
				}
				ok, err := tx.RestockVariant(ctx, *it.VariantID, it.Quantity)
				if err != nil {
					return err
				}
				if ok {
					restocked += it.Quantity
				}
			}
		}

		from = o.Status
		o.Status = to
		order = o
		return nil
	})
	if err != nil {
		return nil, conflictOrErr(err)
	}

	s.metrics.ObserveRestock(restocked)
	logging.FromContext(ctx).Info("order_status_changed",
		"order_id", order.ID, "from", string(from), "to", string(to), "restocked", restocked)

	eventType := "order.status_changed"
	if to == models.OrderStatusCancelled {
		eventType = "order.cancelled"
	}
	event := kafka.NewEvent(eventType, map[string]any{
		"order_id": order.ID,
		"code":     order.Code,
		"user_id":  order.UserID.String(),
		"from":     string(from),
		"to":       string(to),
	})
	if err := s.publisher.PublishEvent(ctx, kafka.TopicOrderEvents, idKey(order.ID), event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "type", event.Type, "error", err)
	}
	return order, nil
}
