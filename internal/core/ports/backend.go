package ports

import (
	"context"
	"encoding/json"

	"github.com/99minutos/storefront/internal/core/domain"
)

// AuthResult is the body of a successful login or token refresh.
type AuthResult struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// RegisterInput is the payload of an account registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// OrderItemInput is one line of a checkout.
type OrderItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput carries a checkout submission.
type CreateOrderInput struct {
	Items          []OrderItemInput `json:"items"`
	IdempotencyKey string           `json:"-"`
}

// ProductInput is the listing form sent to the create and edit endpoints.
// Price 0 lists the item for free.
type ProductInput struct {
	Name                  string        `json:"name" validate:"required,max=255"`
	Description           string        `json:"description" validate:"required"`
	AdditionalDescription string        `json:"additional_description,omitempty"`
	Price                 domain.Amount `json:"price" validate:"gte=0"`
	Condition             string        `json:"product_condition" validate:"required,oneof=new like_new lightly_used used_good used_frequent"`
	CategoryID            string        `json:"user_category_id" validate:"required"`
	StockQuantity         int           `json:"stock_quantity" validate:"gte=1"`
	Status                string        `json:"status" validate:"required,oneof=draft published"`
}

// Backend is the external REST collaborator. Authenticated calls take the
// bearer token explicitly. Errors are *domain.FetchError,
// *domain.ValidationError, domain.ErrSessionExpired (401) or
// domain.ErrNotFound (404).
type Backend interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, token string) (*AuthResult, error)
	Register(ctx context.Context, in RegisterInput) error

	// GetRaw returns the undecoded body of a list endpoint so envelope
	// handling stays with the caller.
	GetRaw(ctx context.Context, path, token string) (json.RawMessage, error)

	GetPublicProduct(ctx context.Context, id string) (*domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateProduct(ctx context.Context, token string, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, in ProductInput) (*domain.Product, error)
	UpdateProductStatus(ctx context.Context, token, id, status string) error
	DeleteProduct(ctx context.Context, token, id string) error

	CreateOrder(ctx context.Context, token string, in CreateOrderInput) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, token, id, status string) error

	UpdateProfile(ctx context.Context, token string, fields map[string]string) (*domain.User, error)
	GetPublicUser(ctx context.Context, username string) (*domain.User, error)
}
