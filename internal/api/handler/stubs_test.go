package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/middleware"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
	"github.com/99minutos/storefront/internal/infrastructure/storage/memory"
)

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withSession(c echo.Context, userID string) {
	c.Set(middleware.KeySession, &domain.Session{Token: "tok-" + userID, UserID: userID, Name: "User " + userID, Role: domain.RoleUser})
}

// ---------------------------------------------------------------------------
// Views over an in-memory session store
// ---------------------------------------------------------------------------

func newStore(t *testing.T) *service.SessionStore {
	t.Helper()
	return service.NewSessionStore(memory.NewStorage(), memory.NewBus(), "http://backend.test", zerolog.Nop())
}

func newProductView(t *testing.T, cfg service.ViewConfig, load service.Loader[domain.Product]) *service.ListingView[domain.Product] {
	t.Helper()
	v, err := service.NewListingView(context.Background(), newStore(t), cfg, load, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewListingView: %v", err)
	}
	t.Cleanup(v.Close)
	return v
}

func staticProducts(items ...domain.Product) service.Loader[domain.Product] {
	return func(context.Context, *domain.Session, listing.Params) (service.FetchResult[domain.Product], error) {
		return service.FetchResult[domain.Product]{Items: items}, nil
	}
}

func failingProducts(err error) service.Loader[domain.Product] {
	return func(context.Context, *domain.Session, listing.Params) (service.FetchResult[domain.Product], error) {
		return service.FetchResult[domain.Product]{}, err
	}
}

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	loginFn    func(ctx context.Context, email, password string) (*domain.Session, error)
	registerFn func(ctx context.Context, in ports.RegistrationForm) error
	loggedOut  bool
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegistrationForm) error {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Logout(context.Context) error {
	s.loggedOut = true
	return nil
}

type stubRefresher struct {
	sess *domain.Session
	err  error
}

func (s *stubRefresher) Refresh(context.Context, *domain.Session) (*domain.Session, error) {
	return s.sess, s.err
}

type stubListingService struct {
	applied []string
	err     error
	results []ports.ActionResult

	created []ports.ProductInput
	edited  map[string]ports.ProductInput
	stats   *listing.Stats
}

func (s *stubListingService) Create(_ context.Context, in ports.ProductInput) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, in)
	return &domain.Product{ID: "41", Name: in.Name, Status: in.Status}, nil
}

func (s *stubListingService) Update(_ context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.edited == nil {
		s.edited = make(map[string]ports.ProductInput)
	}
	s.edited[id] = in
	return &domain.Product{ID: domain.ID(id), Name: in.Name, Status: in.Status}, nil
}

func (s *stubListingService) Stats(context.Context) (*listing.Stats, error) {
	return s.stats, s.err
}

func (s *stubListingService) Apply(_ context.Context, action ports.ListingAction, id string) error {
	s.applied = append(s.applied, string(action)+":"+id)
	return s.err
}

func (s *stubListingService) Bulk(_ context.Context, _ ports.ListingAction, _ []string) ([]ports.ActionResult, error) {
	return s.results, s.err
}

type stubCheckoutService struct {
	buyFn   func(ctx context.Context, productID string, qty int) (*domain.Order, error)
	updates []string
}

func (s *stubCheckoutService) BuyNow(ctx context.Context, productID string, qty int) (*domain.Order, error) {
	return s.buyFn(ctx, productID, qty)
}

func (s *stubCheckoutService) UpdateOrderStatus(_ context.Context, id, status string) error {
	s.updates = append(s.updates, id+"="+status)
	return nil
}

type stubProfileService struct {
	sess    *domain.Session
	public  *ports.PublicProfile
	updated map[string]string
}

func (s *stubProfileService) Profile(context.Context) (*domain.Session, error) {
	if s.sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.sess, nil
}

func (s *stubProfileService) UpdateField(_ context.Context, field, value string) (*domain.Session, error) {
	if s.updated == nil {
		s.updated = make(map[string]string)
	}
	s.updated[field] = value
	return s.sess, nil
}

func (s *stubProfileService) PublicProfile(_ context.Context, username string) (*ports.PublicProfile, error) {
	if s.public == nil || s.public.Username != username {
		return nil, domain.ErrNotFound
	}
	cp := *s.public
	return &cp, nil
}

type stubCatalogService struct {
	cats    []domain.Category
	product *ports.ProductDetail
}

func (s *stubCatalogService) Categories(context.Context) ([]domain.Category, error) {
	return s.cats, nil
}

func (s *stubCatalogService) Product(_ context.Context, id string) (*ports.ProductDetail, error) {
	if s.product == nil || string(s.product.ID) != id {
		return nil, domain.ErrNotFound
	}
	return s.product, nil
}
