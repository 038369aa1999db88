package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/metrics"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// Endpoint names a remote collection.
type Endpoint int

const (
	EndpointPublicCatalog Endpoint = iota
	EndpointMyListings
	EndpointMyOrders
)

func (e Endpoint) String() string {
	switch e {
	case EndpointPublicCatalog:
		return "public_catalog"
	case EndpointMyListings:
		return "my_listings"
	case EndpointMyOrders:
		return "my_orders"
	default:
		return fmt.Sprintf("endpoint(%d)", int(e))
	}
}

// RequiresSession reports whether the endpoint is user-scoped.
func (e Endpoint) RequiresSession() bool {
	return e != EndpointPublicCatalog
}

func (e Endpoint) path(sess *domain.Session) string {
	switch e {
	case EndpointMyListings:
		return "/api/products/user/" + sess.UserID
	case EndpointMyOrders:
		return "/api/orders"
	default:
		return "/api/products/public"
	}
}

// WarnUnexpectedShape is set on a result whose body was not a recognised
// collection envelope.
const WarnUnexpectedShape = "unexpected response shape; showing an empty list"

// FetchResult is one page of entities plus a non-fatal warning.
type FetchResult[T any] struct {
	Items   []T
	Warning string
}

// CollectionFetcher retrieves remote collections and unwraps their
// envelopes. It never mutates the session.
type CollectionFetcher struct {
	backend ports.Backend
	log     zerolog.Logger
}

func NewCollectionFetcher(backend ports.Backend, log zerolog.Logger) *CollectionFetcher {
	return &CollectionFetcher{backend: backend, log: log}
}

// FetchProducts loads the public catalog or the session owner's listings.
func (f *CollectionFetcher) FetchProducts(ctx context.Context, ep Endpoint, sess *domain.Session) (FetchResult[domain.Product], error) {
	if ep == EndpointMyOrders {
		return FetchResult[domain.Product]{}, fmt.Errorf("fetch products: %s is not a product endpoint", ep)
	}
	return fetchCollection[domain.Product](ctx, f, ep, sess)
}

// FetchOrders loads the session owner's orders.
func (f *CollectionFetcher) FetchOrders(ctx context.Context, sess *domain.Session) (FetchResult[domain.Order], error) {
	return fetchCollection[domain.Order](ctx, f, EndpointMyOrders, sess)
}

func fetchCollection[T any](ctx context.Context, f *CollectionFetcher, ep Endpoint, sess *domain.Session) (FetchResult[T], error) {
	var res FetchResult[T]
	if ep.RequiresSession() && (sess == nil || !sess.Complete()) {
		return res, domain.ErrUnauthenticated
	}

	token := ""
	if ep.RequiresSession() {
		token = sess.Token
	}

	start := time.Now()
	raw, err := f.backend.GetRaw(ctx, ep.path(sess), token)
	metrics.FetchDuration.WithLabelValues(ep.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrSessionExpired) {
			outcome = "expired"
		}
		metrics.FetchesTotal.WithLabelValues(ep.String(), outcome).Inc()
		return res, err
	}

	items, ok, err := unwrapCollection[T](raw)
	if err != nil {
		metrics.FetchesTotal.WithLabelValues(ep.String(), "error").Inc()
		return res, &domain.FetchError{Op: "fetch " + ep.String(), Message: "unexpected response", Cause: err}
	}
	if !ok {
		f.log.Warn().Str("endpoint", ep.String()).Msg("unrecognised collection envelope")
		metrics.FetchesTotal.WithLabelValues(ep.String(), "empty_shape").Inc()
		res.Items = []T{}
		res.Warning = WarnUnexpectedShape
		return res, nil
	}

	metrics.FetchesTotal.WithLabelValues(ep.String(), "ok").Inc()
	res.Items = items
	return res, nil
}

// unwrapCollection accepts a bare array, {"data": [...]} or the paginated
// {"data": {"data": [...]}}. ok is false for any other shape.
func unwrapCollection[T any](raw json.RawMessage) (items []T, ok bool, err error) {
	body := bytes.TrimSpace(raw)
	for depth := 0; depth < 3; depth++ {
		if len(body) == 0 {
			return nil, false, nil
		}
		switch body[0] {
		case '[':
			if err := json.Unmarshal(body, &items); err != nil {
				return nil, false, err
			}
			if items == nil {
				items = []T{}
			}
			return items, true, nil
		case '{':
			var env struct {
				Data json.RawMessage `json:"data"`
			}
			if err := json.Unmarshal(body, &env); err != nil {
				return nil, false, nil
			}
			body = bytes.TrimSpace(env.Data)
		default:
			return nil, false, nil
		}
	}
	return nil, false, nil
}
