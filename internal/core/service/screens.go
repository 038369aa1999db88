package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
)

// CatalogLoader loads the public catalog. It never needs a session.
func CatalogLoader(f *CollectionFetcher) Loader[domain.Product] {
	return func(ctx context.Context, _ *domain.Session, _ listing.Params) (FetchResult[domain.Product], error) {
		return f.FetchProducts(ctx, EndpointPublicCatalog, nil)
	}
}

// MyListingsLoader loads the session owner's products through the guard, so
// an expired token is refreshed once before the view gives up.
func MyListingsLoader(f *CollectionFetcher, guard *SessionGuard) Loader[domain.Product] {
	return func(ctx context.Context, _ *domain.Session, _ listing.Params) (FetchResult[domain.Product], error) {
		var res FetchResult[domain.Product]
		err := guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
			var err error
			res, err = f.FetchProducts(ctx, EndpointMyListings, sess)
			return err
		})
		return res, err
	}
}

// OrdersLoader loads the order table and keeps the side given by role.
func OrdersLoader(f *CollectionFetcher, guard *SessionGuard, role listing.OrderRole) Loader[domain.Order] {
	return func(ctx context.Context, _ *domain.Session, _ listing.Params) (FetchResult[domain.Order], error) {
		var res FetchResult[domain.Order]
		err := guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
			r, err := f.FetchOrders(ctx, sess)
			if err != nil {
				return err
			}
			res = FetchResult[domain.Order]{
				Items:   listing.ByRole(r.Items, domain.ID(sess.UserID), role),
				Warning: r.Warning,
			}
			return nil
		})
		return res, err
	}
}

// Screens holds one long-lived view per listing screen of the storefront.
type Screens struct {
	Catalog   *ListingView[domain.Product]
	Listings  *ListingView[domain.Product]
	Sales     *ListingView[domain.Order]
	Purchases *ListingView[domain.Order]
}

// NewScreens builds every screen over the same session store.
func NewScreens(ctx context.Context, store ports.SessionStore, f *CollectionFetcher, guard *SessionGuard, log zerolog.Logger) (*Screens, error) {
	s := &Screens{}
	var err error

	s.Catalog, err = NewListingView(ctx, store, ViewConfig{
		Name:    "catalog",
		Grouped: true,
	}, CatalogLoader(f), log)
	if err != nil {
		return nil, err
	}

	s.Listings, err = NewListingView(ctx, store, ViewConfig{
		Name:            "my_listings",
		Tabs:            listing.ProductTabs,
		RequiresSession: true,
		Params:          listing.DefaultParams("for_sale"),
	}, MyListingsLoader(f, guard), log)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Sales, err = NewListingView(ctx, store, ViewConfig{
		Name:            "sales",
		Tabs:            listing.OrderStatusTabs,
		RequiresSession: true,
	}, OrdersLoader(f, guard, listing.RoleSales), log)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.Purchases, err = NewListingView(ctx, store, ViewConfig{
		Name:            "purchases",
		Tabs:            listing.OrderStatusTabs,
		RequiresSession: true,
	}, OrdersLoader(f, guard, listing.RolePurchases), log)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Orders returns the order view for role.
func (s *Screens) Orders(role listing.OrderRole) *ListingView[domain.Order] {
	if role == listing.RolePurchases {
		return s.Purchases
	}
	return s.Sales
}

// Close releases every view. Nil views are skipped.
func (s *Screens) Close() {
	if s.Catalog != nil {
		s.Catalog.Close()
	}
	if s.Listings != nil {
		s.Listings.Close()
	}
	if s.Sales != nil {
		s.Sales.Close()
	}
	if s.Purchases != nil {
		s.Purchases.Close()
	}
}
