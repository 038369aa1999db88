package service

import (
	"context"
	"strings"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
)

type catalogService struct {
	backend     ports.Backend
	storageBase string
}

// NewCatalogService returns a CatalogService implementation.
func NewCatalogService(backend ports.Backend, storageBase string) ports.CatalogService {
	return &catalogService{backend: backend, storageBase: storageBase}
}

func (s *catalogService) Categories(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.backend.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	return cats, nil
}

func (s *catalogService) Product(ctx context.Context, id string) (*ports.ProductDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "product id is required")
	}
	p, err := s.backend.GetPublicProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ports.ProductDetail{
		Product:  *p,
		CoverURL: listing.CoverURL(s.storageBase, p.Images),
		SoldOut:  p.StockQuantity <= 0,
	}, nil
}
