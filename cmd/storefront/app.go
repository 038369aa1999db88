package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/handler"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
	"github.com/99minutos/storefront/internal/infrastructure/backend"
	mongodb "github.com/99minutos/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/storefront/internal/infrastructure/db/redis"
	"github.com/99minutos/storefront/internal/infrastructure/queue"
	"github.com/99minutos/storefront/internal/infrastructure/storage/memory"
	"github.com/99minutos/storefront/internal/pkg/clock"
	"github.com/99minutos/storefront/internal/pkg/config"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	client  *backend.Client
	store   *service.SessionStore
	guard   *service.SessionGuard
	fetcher *service.CollectionFetcher
	keys    ports.CheckoutKeyStore
	runner  *queue.Dispatcher

	// checks feed the readiness probe.
	checks  map[string]handler.Check
	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		log:    log,
		checks: make(map[string]handler.Check),
	}

	kv, bus, keys, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.client = backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	}, component(log, "backend"))
	a.store = service.NewSessionStore(kv, bus, cfg.Backend.StorageURL, component(log, "session"))
	a.guard = service.NewSessionGuard(a.store, a.client, component(log, "session_guard"))
	a.fetcher = service.NewCollectionFetcher(a.client, component(log, "fetcher"))
	a.keys = keys
	a.runner = queue.NewDispatcher(cfg.BulkWorkers, component(log, "dispatcher"))
	a.runner.Start(ctx)
	return a, nil
}

func component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// openStorage connects the session storage selected by SESSION_BACKEND.
func (a *app) openStorage(ctx context.Context) (ports.KeyValueStore, ports.ChangeBus, ports.CheckoutKeyStore, error) {
	ns := a.cfg.Session.Namespace
	ttl := a.cfg.Checkout.KeyTTL

	switch a.cfg.Session.Backend {
	case config.SessionBackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{Addr: a.cfg.Redis.Addr, DB: a.cfg.Redis.DB})
		if err != nil {
			return nil, nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

		bus := redisdb.NewBus(client, ns, component(a.log, "bus"))
		if err := bus.Start(ctx); err != nil {
			return nil, nil, nil, err
		}
		a.closers = append(a.closers, func() { _ = bus.Close() })
		return redisdb.NewStorage(client, ns), bus, redisdb.NewCheckoutKeys(client, ns, ttl), nil

	case config.SessionBackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
			AppName:  "storefront",
		})
		if err != nil {
			return nil, nil, nil, err
		}
		a.closers = append(a.closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(dctx)
		})
		a.checks["mongo"] = func(ctx context.Context) error { return mongodb.Ping(ctx, db) }

		kv := mongodb.NewStorage(db, ns)
		if err := kv.EnsureIndexes(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		bus := mongodb.NewBus(db, ns, component(a.log, "bus"))
		if err := bus.EnsureIndexes(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		if err := bus.Start(ctx); err != nil {
			return nil, nil, nil, fmt.Errorf("%w (SESSION_BACKEND=mongo needs a replica set for change streams)", err)
		}
		a.closers = append(a.closers, func() { _ = bus.Close() })
		// Checkout keys stay per process; the backend's idempotency key check is the shared guard.
		return kv, bus, memory.NewCheckoutKeys(clock.Real(), ttl), nil

	default:
		return memory.NewStorage(), memory.NewBus(), memory.NewCheckoutKeys(clock.Real(), ttl), nil
	}
}

// ephemeral reports whether the session dies with the process.
func (a *app) ephemeral() bool {
	return a.cfg.Session.Backend == config.SessionBackendMemory
}

func (a *app) auth() ports.AuthService {
	return service.NewAuthService(a.client, a.store, component(a.log, "auth"))
}

func (a *app) profiles() ports.ProfileService {
	return service.NewProfileService(a.client, a.store, a.guard, a.cfg.Backend.StorageURL, component(a.log, "profile"))
}

func (a *app) listings() ports.ListingService {
	return service.NewListingService(a.client, a.guard, a.runner, component(a.log, "listings"))
}

func (a *app) checkout() ports.CheckoutService {
	return service.NewCheckoutService(a.client, a.guard, a.keys, component(a.log, "checkout"))
}

func (a *app) catalog() ports.CatalogService {
	return service.NewCatalogService(a.client, a.cfg.Backend.StorageURL)
}

func (a *app) screens(ctx context.Context) (*service.Screens, error) {
	return service.NewScreens(ctx, a.store, a.fetcher, a.guard, component(a.log, "views"))
}

// countdown returns nil when no launch date is configured.
func (a *app) countdown() (*service.Countdown, error) {
	deadline, err := a.cfg.LaunchTime()
	if err != nil || deadline.IsZero() {
		return nil, err
	}
	return service.NewCountdown(clock.Real(), deadline), nil
}

// Close releases connections in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openApp is newApp for one-shot commands.
func openApp(ctx context.Context) (*app, error) {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if a.ephemeral() {
		log.Debug().Msg("SESSION_BACKEND=memory: the session is not kept between commands")
	}
	return a, nil
}
