package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
)

// RBAC admits sessions whose role is one of roles. It runs after
// RequireSession; a session stored before roles existed counts as
// domain.RoleUser.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFrom(c)
			if sess == nil {
				return domain.ErrUnauthenticated
			}
			role := sess.Role
			if role == "" {
				role = domain.RoleUser
			}
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "this account cannot open this page")
			}
			c.Set(KeyRole, role)
			return next(c)
		}
	}
}
