package ports

import (
	"context"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
)

// AuthService logs users in and out of the shared session.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, in RegistrationForm) error
	Logout(ctx context.Context) error
}

// RegistrationForm is the sign-up form as the user filled it in.
type RegistrationForm struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	AgreeTerms bool   `json:"agree_terms"`
}

// ProfileService reads and edits the logged-in user's profile.
type ProfileService interface {
	Profile(ctx context.Context) (*domain.Session, error)
	UpdateField(ctx context.Context, field, value string) (*domain.Session, error)
	PublicProfile(ctx context.Context, username string) (*PublicProfile, error)
}

// PublicProfile is another user's profile as shown on their showcase page.
type PublicProfile struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`

	Items []domain.Product `json:"items"`
}

// ListingAction is a seller-side change to one product.
type ListingAction string

const (
	ActionPublish   ListingAction = "publish"
	ActionUnpublish ListingAction = "unpublish"
	ActionDelete    ListingAction = "delete"
)

// ActionResult is the outcome of one action within a bulk request.
type ActionResult struct {
	ProductID string `json:"product_id"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
}

// ListingService manages the logged-in seller's products.
type ListingService interface {
	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, productID string, in ProductInput) (*domain.Product, error)
	Apply(ctx context.Context, action ListingAction, productID string) error
	Bulk(ctx context.Context, action ListingAction, productIDs []string) ([]ActionResult, error)
	// Stats summarises every product the seller owns, whatever its status.
	Stats(ctx context.Context) (*listing.Stats, error)
}

// CheckoutService places and progresses orders.
type CheckoutService interface {
	BuyNow(ctx context.Context, productID string, quantity int) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) error
}

// CatalogService serves the public side of the storefront that is not a
// listing view: categories for filter drop-downs and product pages.
type CatalogService interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Product(ctx context.Context, id string) (*ProductDetail, error)
}

// ProductDetail is a public product with its cover resolved to a URL.
type ProductDetail struct {
	domain.Product
	CoverURL string `json:"cover_url"`
	SoldOut  bool   `json:"sold_out"`
}
