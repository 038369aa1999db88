package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
)

type ListingHandler struct {
	view     *service.ListingView[domain.Product]
	listings ports.ListingService
}

func NewListingHandler(view *service.ListingView[domain.Product], listings ports.ListingService) *ListingHandler {
	return &ListingHandler{view: view, listings: listings}
}

type listingActionRequest struct {
	Action string `json:"action" validate:"required,oneof=publish unpublish"`
}

type bulkRequest struct {
	Action string   `json:"action" validate:"required,oneof=publish unpublish delete"`
	IDs    []string `json:"ids" validate:"required,min=1"`
}

type bulkResponse struct {
	Results []ports.ActionResult `json:"results"`
	Failed  int                  `json:"failed"`
}

// List returns the seller's own products under the draft / for_sale tabs.
//
// @Summary      My listings
// @Tags         listings
// @Produce      json
// @Param        tab     query     string  false  "draft or for_sale"
// @Param        search  query     string  false  "Name or category search"
// @Param        sort    query     string  false  "newest, oldest, price_low, price_high"
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]string
// @Router       /v1/me/listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	return renderView(c, h.view)
}

// Create lists a new product. Field errors, local or from the backend, come
// back as 422 with one message list per form field.
//
// @Summary      Create a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        body  body      ports.ProductInput  true  "Listing form"
// @Success      201   {object}  domain.Product
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /v1/me/listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	var req ports.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	p, err := h.listings.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// Update replaces the form fields of one product.
//
// @Summary      Edit a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Product id"
// @Param        body  body      ports.ProductInput  true  "Listing form"
// @Success      200   {object}  domain.Product
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /v1/me/listings/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	var req ports.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	p, err := h.listings.Update(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// Stats returns the seller dashboard figures over all of the seller's products.
//
// @Summary      Seller dashboard stats
// @Tags         listings
// @Produce      json
// @Success      200  {object}  listing.Stats
// @Failure      401  {object}  map[string]string
// @Router       /v1/me/listings/stats [get]
func (h *ListingHandler) Stats(c echo.Context) error {
	s, err := h.listings.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateStatus publishes or unpublishes one product.
//
// @Summary      Publish or unpublish a listing
// @Tags         listings
// @Accept       json
// @Param        id    path  string                true  "Product id"
// @Param        body  body  listingActionRequest  true  "Action"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /v1/me/listings/{id}/status [put]
func (h *ListingHandler) UpdateStatus(c echo.Context) error {
	var req listingActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.listings.Apply(c.Request().Context(), ports.ListingAction(req.Action), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes one product.
//
// @Summary      Delete a listing
// @Tags         listings
// @Param        id  path  string  true  "Product id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/me/listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	if err := h.listings.Apply(c.Request().Context(), ports.ActionDelete, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Bulk applies one action to many products. Per-item failures are reported
// in the body; the request fails as a whole only when the session is gone.
//
// @Summary      Bulk listing action
// @Tags         listings
// @Accept       json
// @Produce      json
// @Param        body  body      bulkRequest  true  "Action and product ids"
// @Success      200   {object}  bulkResponse
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /v1/me/listings/bulk [post]
func (h *ListingHandler) Bulk(c echo.Context) error {
	var req bulkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	results, err := h.listings.Bulk(c.Request().Context(), ports.ListingAction(req.Action), req.IDs)
	if err != nil {
		return err
	}
	resp := bulkResponse{Results: results}
	for _, r := range results {
		if r.Error != "" {
			resp.Failed++
		}
	}
	return c.JSON(http.StatusOK, resp)
}
