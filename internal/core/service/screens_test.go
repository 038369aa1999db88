package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
)

const ordersBody = `{"data":[
	{"id":1,"user_id":7,"order_number":"A","status":"pending","details":[{"product":{"id":10,"user_id":3}}]},
	{"id":2,"user_id":3,"order_number":"B","status":"shipped","details":[{"product":{"id":11,"user_id":7}}]},
	{"id":3,"user_id":7,"order_number":"C","status":"completed","details":[{"product":{"id":12,"user_id":7}}]}
]}`

func newScreensFixture(t *testing.T) (*SessionStore, *stubBackend, *Screens) {
	t.Helper()
	store := newSharedStorage().store()
	backend := newStubBackend()
	guard := NewSessionGuard(store, backend, zerolog.Nop())
	s, err := NewScreens(context.Background(), store, NewCollectionFetcher(backend, zerolog.Nop()), guard, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewScreens: %v", err)
	}
	t.Cleanup(s.Close)
	return store, backend, s
}

func orderNumbers(orders []domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.OrderNumber)
	}
	return out
}

func TestScreens_OrdersSplitByRole(t *testing.T) {
	ctx := context.Background()
	store, backend, s := newScreensFixture(t)
	loggedIn(t, store, "7")
	backend.raw["/api/orders"] = ordersBody

	if _, err := s.Orders(listing.RoleSales).Load(ctx); err != nil {
		t.Fatalf("load sales: %v", err)
	}
	if _, err := s.Orders(listing.RolePurchases).Load(ctx); err != nil {
		t.Fatalf("load purchases: %v", err)
	}
	if diff := cmp.Diff([]string{"B", "C"}, orderNumbers(s.Sales.Snapshot().Items)); diff != "" {
		t.Fatalf("sales (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A"}, orderNumbers(s.Purchases.Snapshot().Items)); diff != "" {
		t.Fatalf("purchases (-want +got):\n%s", diff)
	}
}

func TestScreens_ListingsRefreshExpiredToken(t *testing.T) {
	ctx := context.Background()
	store, backend, s := newScreensFixture(t)
	loggedIn(t, store, "7")
	fresh := signedToken(t, "7")
	backend.expiredTokens["tok-7"] = true
	backend.refreshResults = []*ports.AuthResult{{AccessToken: fresh}}
	backend.raw["/api/products/user/7"] = `[{"id":1,"name":"Lamp","status":"published"}]`

	outcome, err := s.Listings.Load(ctx)
	if err != nil || outcome != OutcomeApplied {
		t.Fatalf("expected applied load after refresh, got %v, %v", outcome, err)
	}
	if got := len(s.Listings.Snapshot().Items); got != 1 {
		t.Fatalf("expected 1 listing, got %d", got)
	}
	if sess := s.Listings.Session(); sess == nil || sess.Token != fresh {
		t.Fatalf("view should see the refreshed token, got %+v", sess)
	}
}

func TestScreens_CatalogIsPublic(t *testing.T) {
	_, backend, s := newScreensFixture(t)
	backend.raw["/api/products/public"] = `[{"id":1,"name":"Lamp","status":"published","category":{"id":1,"name":"Home"}}]`

	if _, err := s.Catalog.Load(context.Background()); err != nil {
		t.Fatalf("catalog load: %v", err)
	}
	snap := s.Catalog.Snapshot()
	if len(snap.Groups) != 1 || snap.Groups[0].Name != "Home" {
		t.Fatalf("unexpected groups %+v", snap.Groups)
	}
	if _, err := s.Listings.Load(context.Background()); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("listings need a session, got %v", err)
	}
}
