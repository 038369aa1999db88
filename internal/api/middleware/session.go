package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

// Context keys set by RequireSession.
const (
	KeySession = "session"
	KeyUserID  = "user_id"
	KeyRole    = "role"
)

// RequireSession loads the stored session and injects it into the context.
// Requests without one fail with domain.ErrUnauthenticated, which the error
// handler turns into a 401 with a login redirect.
func RequireSession(store ports.SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := store.Load(c.Request().Context())
			if errors.Is(err, domain.ErrNoSession) {
				return domain.ErrUnauthenticated
			}
			if err != nil {
				return err
			}

			c.Set(KeySession, sess)
			c.Set(KeyUserID, sess.UserID)
			c.Set(KeyRole, sess.Role)

			return next(c)
		}
	}
}

// SessionFrom returns the session injected by RequireSession, or nil.
func SessionFrom(c echo.Context) *domain.Session {
	sess, _ := c.Get(KeySession).(*domain.Session)
	return sess
}
