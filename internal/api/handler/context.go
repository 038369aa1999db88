package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/api/middleware"
	"github.com/99minutos/storefront/internal/core/domain"
)

// ctxSession returns the session injected by the RequireSession middleware.
// A handler mounted without the middleware fails closed with
// ErrUnauthenticated rather than acting anonymously.
func ctxSession(c echo.Context) (*domain.Session, error) {
	sess := middleware.SessionFrom(c)
	if sess == nil || !sess.Complete() {
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}
