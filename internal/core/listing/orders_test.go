package listing

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/99minutos/storefront/internal/core/domain"
)

func order(id, buyer string, sellers ...string) domain.Order {
	o := domain.Order{ID: domain.ID(id), UserID: domain.ID(buyer), OrderNumber: "ORD-" + id, Status: domain.OrderStatusPending}
	for _, s := range sellers {
		o.Details = append(o.Details, domain.OrderDetail{Product: domain.OrderProduct{UserID: domain.ID(s)}})
	}
	return o
}

func orderIDs(orders []domain.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = string(o.ID)
	}
	return out
}

func TestByRole(t *testing.T) {
	orders := []domain.Order{
		order("1", "buyer", "me"),
		order("2", "me", "seller"),
		order("3", "me", "me"),
		order("4", "buyer", "seller"),
	}

	if diff := cmp.Diff([]string{"1", "3"}, orderIDs(ByRole(orders, "me", RoleSales))); diff != "" {
		t.Errorf("sales mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2"}, orderIDs(ByRole(orders, "me", RolePurchases))); diff != "" {
		t.Errorf("purchases mismatch (-want +got):\n%s", diff)
	}
	if got := ByRole(orders, "", RoleSales); got != nil {
		t.Errorf("expected nil for anonymous user, got %v", orderIDs(got))
	}
}

func TestOrderSearch_MatchesBuyerName(t *testing.T) {
	a := order("1", "b", "me")
	a.Buyer.Name = "Siti Aminah"
	b := order("2", "b", "me")
	b.Buyer.Name = "Budi"

	got := Filter([]domain.Order{a, b}, OrderStatusTabs, Params{Search: "siti"})
	if diff := cmp.Diff([]string{"1"}, orderIDs(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
