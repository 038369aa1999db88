package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/metrics"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

type checkoutService struct {
	backend ports.Backend
	guard   *SessionGuard
	keys    ports.CheckoutKeyStore
	log     zerolog.Logger
}

// NewCheckoutService returns a CheckoutService implementation.
func NewCheckoutService(backend ports.Backend, guard *SessionGuard, keys ports.CheckoutKeyStore, log zerolog.Logger) ports.CheckoutService {
	return &checkoutService{backend: backend, guard: guard, keys: keys, log: log}
}

// BuyNow places a single-item order. The quantity must be between 1 and the
// product's current stock. Repeating the same submission while the
// checkout key is live sends the same Idempotency-Key, so the backend
// creates at most one order.
func (s *checkoutService) BuyNow(ctx context.Context, productID string, quantity int) (*domain.Order, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "product id is required")
	}

	var order *domain.Order
	err := s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		product, err := s.backend.GetPublicProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := checkQuantity(quantity, product.StockQuantity); err != nil {
			return err
		}

		fingerprint := sess.UserID + ":" + productID + ":" + strconv.Itoa(quantity)
		key, err := s.keys.Claim(ctx, fingerprint, uuid.NewString())
		if err != nil {
			return fmt.Errorf("checkout: claim key: %w", err)
		}

		o, err := s.backend.CreateOrder(ctx, sess.Token, ports.CreateOrderInput{
			Items:          []ports.OrderItemInput{{ProductID: productID, Quantity: quantity}},
			IdempotencyKey: key,
		})
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				// Rejected outright; a corrected retry must not reuse the key.
				if rerr := s.keys.Release(ctx, fingerprint); rerr != nil {
					s.log.Warn().Err(rerr).Str("product_id", productID).Msg("checkout key not released; a retry reuses it until it expires")
				}
			}
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		result := "error"
		if errors.Is(err, domain.ErrValidationFailed) {
			result = "rejected"
		}
		metrics.OrdersPlacedTotal.WithLabelValues(result).Inc()
		return nil, err
	}

	metrics.OrdersPlacedTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("product_id", productID).Int("quantity", quantity).Str("order", order.OrderNumber).Msg("order placed")
	return order, nil
}

func checkQuantity(quantity, stock int) error {
	switch {
	case stock <= 0:
		return domain.NewValidationError("quantity", "this item is sold out")
	case quantity < 1:
		return domain.NewValidationError("quantity", "quantity must be at least 1")
	case quantity > stock:
		return domain.NewValidationError("quantity", fmt.Sprintf("only %d left in stock", stock))
	}
	return nil
}

// UpdateOrderStatus moves an order to one of the order table statuses.
func (s *checkoutService) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	switch status {
	case domain.OrderStatusPending, domain.OrderStatusProcessing, domain.OrderStatusShipped,
		domain.OrderStatusCompleted, domain.OrderStatusCancelled:
	default:
		return domain.NewValidationError("status", "status must be one of: pending processing shipped completed cancelled")
	}
	if orderID == "" {
		return domain.NewValidationError("order_id", "order id is required")
	}
	return s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		return s.backend.UpdateOrderStatus(ctx, sess.Token, orderID, status)
	})
}
