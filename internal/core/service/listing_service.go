package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/metrics"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/pkg/validate"
)

type listingService struct {
	backend ports.Backend
	fetcher *CollectionFetcher
	guard   *SessionGuard
	runner  ports.TaskRunner
	log     zerolog.Logger
}

// NewListingService returns a ListingService implementation. Bulk actions
// run on runner, sharded by product id.
func NewListingService(backend ports.Backend, guard *SessionGuard, runner ports.TaskRunner, log zerolog.Logger) ports.ListingService {
	return &listingService{
		backend: backend,
		fetcher: NewCollectionFetcher(backend, log),
		guard:   guard,
		runner:  runner,
		log:     log,
	}
}

// Create submits a new listing. The form is checked locally first; the
// backend's own 422 field errors come back as a *domain.ValidationError too.
func (s *listingService) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	in = normalizeProduct(in)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var created *domain.Product
	err := s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		p, err := s.backend.CreateProduct(ctx, sess.Token, in)
		created = p
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", string(created.ID)).Str("status", in.Status).Msg("listing created")
	return created, nil
}

// Update replaces every form field of one of the seller's products.
func (s *listingService) Update(ctx context.Context, productID string, in ports.ProductInput) (*domain.Product, error) {
	if productID == "" {
		return nil, domain.NewValidationError("product_id", "product id is required")
	}
	in = normalizeProduct(in)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	var updated *domain.Product
	err := s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		p, err := s.backend.UpdateProduct(ctx, sess.Token, productID, in)
		updated = p
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("product_id", productID).Msg("listing edited")
	return updated, nil
}

func normalizeProduct(in ports.ProductInput) ports.ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.AdditionalDescription = strings.TrimSpace(in.AdditionalDescription)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	return in
}

// Stats fetches all of the seller's products and summarises them.
func (s *listingService) Stats(ctx context.Context) (*listing.Stats, error) {
	var stats listing.Stats
	err := s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		res, err := s.fetcher.FetchProducts(ctx, EndpointMyListings, sess)
		if err != nil {
			return err
		}
		stats = listing.Summarize(res.Items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ParseListingAction validates an action name.
func ParseListingAction(s string) (ports.ListingAction, error) {
	switch a := ports.ListingAction(s); a {
	case ports.ActionPublish, ports.ActionUnpublish, ports.ActionDelete:
		return a, nil
	default:
		return "", domain.NewValidationError("action", "action must be one of: publish unpublish delete")
	}
}

// Apply runs one action on one product owned by the session user.
func (s *listingService) Apply(ctx context.Context, action ports.ListingAction, productID string) error {
	if _, err := ParseListingAction(string(action)); err != nil {
		return err
	}
	if productID == "" {
		return domain.NewValidationError("product_id", "product id is required")
	}
	err := s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		return s.perform(ctx, sess.Token, action, productID)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("action", string(action)).Str("product_id", productID).Msg("listing updated")
	return nil
}

// Bulk runs action on every product. Results follow the order of
// productIDs. Items rejected with an expired token are retried once after
// a refresh; if that fails the remaining items report ErrUnauthenticated
// and so does the returned error.
func (s *listingService) Bulk(ctx context.Context, action ports.ListingAction, productIDs []string) ([]ports.ActionResult, error) {
	if _, err := ParseListingAction(string(action)); err != nil {
		return nil, err
	}
	if len(productIDs) == 0 {
		return nil, domain.NewValidationError("product_ids", "at least one product is required")
	}

	results := make([]ports.ActionResult, len(productIDs))
	pending := make([]int, len(productIDs))
	for i, id := range productIDs {
		results[i].ProductID = id
		pending[i] = i
	}

	err := s.guard.Do(ctx, func(ctx context.Context, sess *domain.Session) error {
		tasks := make([]ports.Task, len(pending))
		for n, i := range pending {
			id := productIDs[i]
			tasks[n] = ports.Task{Key: id, Run: func(ctx context.Context) error {
				return s.perform(ctx, sess.Token, action, id)
			}}
		}

		var expired []int
		for n, err := range s.runner.Run(ctx, tasks) {
			i := pending[n]
			if errors.Is(err, domain.ErrSessionExpired) {
				expired = append(expired, i)
				continue
			}
			setResult(&results[i], err)
		}
		pending = expired
		if len(expired) > 0 {
			return domain.ErrSessionExpired
		}
		return nil
	})
	for _, i := range pending {
		setResult(&results[i], err)
	}

	for _, r := range results {
		outcome := "ok"
		if r.Err != nil {
			outcome = "error"
		}
		metrics.BulkActionsTotal.WithLabelValues(string(action), outcome).Inc()
	}
	return results, err
}

func setResult(r *ports.ActionResult, err error) {
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

func (s *listingService) perform(ctx context.Context, token string, action ports.ListingAction, productID string) error {
	switch action {
	case ports.ActionPublish:
		return s.backend.UpdateProductStatus(ctx, token, productID, domain.ProductStatusPublished)
	case ports.ActionUnpublish:
		return s.backend.UpdateProductStatus(ctx, token, productID, domain.ProductStatusDraft)
	case ports.ActionDelete:
		return s.backend.DeleteProduct(ctx, token, productID)
	default:
		return fmt.Errorf("unknown listing action %q", action)
	}
}
