package domain

import "time"

// Order statuses understood by the order table.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// OrderProduct is the product summary embedded in an order line.
type OrderProduct struct {
	ID          ID     `json:"id"`
	UserID      ID     `json:"user_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       Amount `json:"price"`
	CoverImage  *Image `json:"cover_image,omitempty"`
}

// OrderDetail is a single line of an order.
type OrderDetail struct {
	ID         ID           `json:"id"`
	OrderID    ID           `json:"order_id"`
	ProductID  ID           `json:"product_id"`
	Quantity   int          `json:"quantity"`
	UnitPrice  Amount       `json:"unit_price"`
	TotalPrice Amount       `json:"total_price"`
	Product    OrderProduct `json:"product"`
}

// Order is a purchase as returned by the backend. UserID is the buyer.
type Order struct {
	ID          ID            `json:"id"`
	UserID      ID            `json:"user_id"`
	OrderNumber string        `json:"order_number"`
	TotalPrice  Amount        `json:"total_price"`
	Status      string        `json:"status"`
	Buyer       User          `json:"user"`
	Details     []OrderDetail `json:"details"`
	CreatedAt   Timestamp     `json:"created_at"`
	UpdatedAt   Timestamp     `json:"updated_at"`
}

func (o Order) EntityStatus() string { return o.Status }
func (o Order) EntityName() string   { return o.OrderNumber }

// CategoryKey is empty: orders carry no classification.
func (o Order) CategoryKey() string { return "" }

// CategoryLabel is the buyer's name, the secondary search field for orders.
func (o Order) CategoryLabel() string { return o.Buyer.Name }

func (o Order) EntityPrice() float64       { return float64(o.TotalPrice) }
func (o Order) EntityCreatedAt() time.Time { return o.CreatedAt.Time }

// SoldBy reports whether any line of the order is a product owned by userID.
func (o Order) SoldBy(userID ID) bool {
	for _, d := range o.Details {
		if d.Product.UserID == userID {
			return true
		}
	}
	return false
}

// BoughtBy reports whether userID placed the order for at least one product
// they do not own.
func (o Order) BoughtBy(userID ID) bool {
	if o.UserID != userID {
		return false
	}
	for _, d := range o.Details {
		if d.Product.UserID != userID {
			return true
		}
	}
	return false
}
