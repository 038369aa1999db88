package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/infrastructure/storage/memory"
	"github.com/99minutos/storefront/internal/pkg/clock"
)

func newCheckoutFixture(t *testing.T) (*SessionStore, *stubBackend, *clock.FakeClock, ports.CheckoutService) {
	t.Helper()
	store := newSharedStorage().store()
	backend := newStubBackend()
	backend.products["5"] = &domain.Product{ID: "5", Name: "Lamp", StockQuantity: 3, Status: domain.ProductStatusPublished}
	clk := clock.Fake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	keys := memory.NewCheckoutKeys(clk, time.Minute)
	guard := NewSessionGuard(store, backend, zerolog.Nop())
	return store, backend, clk, NewCheckoutService(backend, guard, keys, zerolog.Nop())
}

func TestCheckoutService_BuyNow_Success(t *testing.T) {
	store, backend, _, svc := newCheckoutFixture(t)
	loggedIn(t, store, "7")

	order, err := svc.BuyNow(context.Background(), "5", 2)
	if err != nil {
		t.Fatalf("BuyNow returned error: %v", err)
	}
	if order.OrderNumber != "ORD-1" {
		t.Fatalf("unexpected order %+v", order)
	}
	if len(backend.orders) != 1 {
		t.Fatalf("expected one order, got %d", len(backend.orders))
	}
	in := backend.orders[0]
	if len(in.Items) != 1 || in.Items[0].ProductID != "5" || in.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order input %+v", in)
	}
	if _, err := uuid.Parse(in.IdempotencyKey); err != nil {
		t.Fatalf("idempotency key is not a uuid: %q", in.IdempotencyKey)
	}
}

func TestCheckoutService_BuyNow_QuantityBounds(t *testing.T) {
	store, backend, _, svc := newCheckoutFixture(t)
	loggedIn(t, store, "7")

	for _, qty := range []int{0, -1, 4} {
		_, err := svc.BuyNow(context.Background(), "5", qty)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || len(verr.Fields["quantity"]) == 0 {
			t.Fatalf("quantity %d: expected quantity validation error, got %v", qty, err)
		}
	}
	backend.products["6"] = &domain.Product{ID: "6", StockQuantity: 0}
	if _, err := svc.BuyNow(context.Background(), "6", 1); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("sold out: expected validation error, got %v", err)
	}
	if len(backend.orders) != 0 {
		t.Fatalf("no order should be created, got %d", len(backend.orders))
	}
}

func TestCheckoutService_BuyNow_RequiresSession(t *testing.T) {
	_, backend, _, svc := newCheckoutFixture(t)
	if _, err := svc.BuyNow(context.Background(), "5", 1); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if len(backend.orders) != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestCheckoutService_BuyNow_RepeatReusesKeyWithinWindow(t *testing.T) {
	store, backend, clk, svc := newCheckoutFixture(t)
	loggedIn(t, store, "7")

	for i := 0; i < 2; i++ {
		if _, err := svc.BuyNow(context.Background(), "5", 1); err != nil {
			t.Fatalf("BuyNow #%d: %v", i, err)
		}
	}
	if backend.orders[0].IdempotencyKey != backend.orders[1].IdempotencyKey {
		t.Fatalf("repeat submission should reuse the key")
	}

	if _, err := svc.BuyNow(context.Background(), "5", 2); err != nil {
		t.Fatalf("BuyNow qty 2: %v", err)
	}
	if backend.orders[2].IdempotencyKey == backend.orders[0].IdempotencyKey {
		t.Fatalf("a different cart must get a new key")
	}

	clk.Advance(2 * time.Minute)
	if _, err := svc.BuyNow(context.Background(), "5", 1); err != nil {
		t.Fatalf("BuyNow after window: %v", err)
	}
	if backend.orders[3].IdempotencyKey == backend.orders[0].IdempotencyKey {
		t.Fatalf("key should expire after the window")
	}
}

func TestCheckoutService_BuyNow_RejectedReleasesKey(t *testing.T) {
	store, backend, _, svc := newCheckoutFixture(t)
	loggedIn(t, store, "7")
	backend.orderErr = domain.NewValidationError("quantity", "exceeds stock")

	if _, err := svc.BuyNow(context.Background(), "5", 1); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
	backend.orderErr = nil
	if _, err := svc.BuyNow(context.Background(), "5", 1); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if backend.orders[0].IdempotencyKey == backend.orders[1].IdempotencyKey {
		t.Fatalf("rejected submission should not pin its key")
	}
}

type stuckKeys struct {
	ports.CheckoutKeyStore
}

func (stuckKeys) Release(context.Context, string) error {
	return errors.New("connection reset")
}

func TestCheckoutService_BuyNow_FailedReleaseIsLogged(t *testing.T) {
	store := newSharedStorage().store()
	backend := newStubBackend()
	backend.products["5"] = &domain.Product{ID: "5", StockQuantity: 3, Status: domain.ProductStatusPublished}
	backend.orderErr = domain.NewValidationError("quantity", "exceeds stock")
	loggedIn(t, store, "7")

	var buf bytes.Buffer
	keys := stuckKeys{memory.NewCheckoutKeys(clock.Real(), time.Minute)}
	svc := NewCheckoutService(backend, NewSessionGuard(store, backend, zerolog.Nop()), keys, zerolog.New(&buf))

	if _, err := svc.BuyNow(context.Background(), "5", 1); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("the rejection should still be returned, got %v", err)
	}
	if !strings.Contains(buf.String(), "checkout key not released") || !strings.Contains(buf.String(), "connection reset") {
		t.Fatalf("release failure not logged: %q", buf.String())
	}
}

func TestCheckoutService_UpdateOrderStatus(t *testing.T) {
	store, backend, _, svc := newCheckoutFixture(t)
	loggedIn(t, store, "7")

	if err := svc.UpdateOrderStatus(context.Background(), "9", domain.OrderStatusShipped); err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if len(backend.orderUpdates) != 1 || backend.orderUpdates[0] != "9=shipped" {
		t.Fatalf("unexpected updates %v", backend.orderUpdates)
	}
	if err := svc.UpdateOrderStatus(context.Background(), "9", "lost"); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
