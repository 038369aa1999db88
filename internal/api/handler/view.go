package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/service"
)

// HeaderViewOutcome reports what happened to the load behind a view response.
const HeaderViewOutcome = "X-View-Outcome"

// applyQuery overlays the query parameters that are present onto the view's
// current params. Absent parameters keep their previous value, the way a
// screen keeps its filters between visits.
func applyQuery[T domain.Entity](c echo.Context, view *service.ListingView[T]) error {
	p := view.Snapshot().Params
	q := c.QueryParams()
	if q.Has("search") {
		p.Search = q.Get("search")
	}
	if q.Has("category") {
		p.Category = q.Get("category")
	}
	if q.Has("condition") {
		p.Condition = q.Get("condition")
	}
	if q.Has("tab") {
		p.Tab = q.Get("tab")
	}
	if q.Has("sort") {
		p.Sort = listing.ParseSortKey(q.Get("sort"))
	}
	return view.Apply(p)
}

// renderView applies the query, reloads the collection and writes the
// snapshot. A failed load still renders the previous items with the notice,
// under 502; a missing session is an error for the error handler.
func renderView[T domain.Entity](c echo.Context, view *service.ListingView[T]) error {
	if err := applyQuery(c, view); err != nil {
		return err
	}

	outcome, err := view.Load(c.Request().Context())
	c.Response().Header().Set(HeaderViewOutcome, outcome.String())
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrSessionExpired) {
			return err
		}
		return c.JSON(http.StatusBadGateway, view.Snapshot())
	}
	return c.JSON(http.StatusOK, view.Snapshot())
}
