package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/storefront/internal/api/metrics"
	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// SessionGuard runs authenticated calls and recovers from one expired token
// by refreshing it. It never loops: one refresh, one retry.
type SessionGuard struct {
	store   ports.SessionStore
	backend ports.Backend
	log     zerolog.Logger
}

func NewSessionGuard(store ports.SessionStore, backend ports.Backend, log zerolog.Logger) *SessionGuard {
	return &SessionGuard{store: store, backend: backend, log: log}
}

// Do loads the session and calls fn with it. When fn reports
// ErrSessionExpired the token is refreshed, persisted, and fn is called once
// more with the renewed session. A failed refresh or a second expiry clears
// the session and yields ErrUnauthenticated.
func (g *SessionGuard) Do(ctx context.Context, fn func(ctx context.Context, sess *domain.Session) error) error {
	sess, err := g.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return domain.ErrUnauthenticated
		}
		return err
	}

	err = fn(ctx, sess)
	if !errors.Is(err, domain.ErrSessionExpired) {
		return err
	}

	renewed, err := g.Refresh(ctx, sess)
	if err != nil {
		return err
	}

	err = fn(ctx, renewed)
	if errors.Is(err, domain.ErrSessionExpired) {
		g.log.Info().Str("user_id", sess.UserID).Msg("token rejected after refresh, signing out")
		return g.signOut(ctx)
	}
	return err
}

// Refresh exchanges the session's token for a new one and returns the
// reloaded session. Any failure signs the user out.
func (g *SessionGuard) Refresh(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	res, err := g.backend.Refresh(ctx, sess.Token)
	if err == nil && res.AccessToken == "" {
		err = errors.New("refresh response has no access token")
	}
	if err == nil {
		_, err = tokenSubject(res.AccessToken)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		metrics.SessionRefreshesTotal.WithLabelValues("failed").Inc()
		g.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("token refresh failed")
		return nil, g.signOut(ctx)
	}

	if err := g.store.ApplyRefresh(ctx, res.AccessToken, res.User); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	metrics.SessionRefreshesTotal.WithLabelValues("ok").Inc()

	renewed, err := g.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	return renewed, nil
}

func (g *SessionGuard) signOut(ctx context.Context) error {
	if err := g.store.Clear(ctx); err != nil {
		g.log.Error().Err(err).Msg("failed to clear session")
	}
	return domain.ErrUnauthenticated
}
