package listing

import "github.com/99minutos/storefront/internal/core/domain"

// OrderRole splits the order table into what the user sold and bought.
type OrderRole string

const (
	RoleSales     OrderRole = "sales"
	RolePurchases OrderRole = "purchases"
)

// ByRole keeps orders where userID is the seller (sales) or the buyer of
// someone else's product (purchases). An empty userID yields nothing.
func ByRole(orders []domain.Order, userID domain.ID, role OrderRole) []domain.Order {
	if userID == "" {
		return nil
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		switch role {
		case RolePurchases:
			if o.BoughtBy(userID) {
				out = append(out, o)
			}
		default:
			if o.SoldBy(userID) {
				out = append(out, o)
			}
		}
	}
	return out
}
