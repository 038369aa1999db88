package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
)

type CatalogHandler struct {
	view    *service.ListingView[domain.Product]
	catalog ports.CatalogService
}

func NewCatalogHandler(view *service.ListingView[domain.Product], catalog ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{view: view, catalog: catalog}
}

// Catalog returns the public catalog grouped by category.
//
// @Summary      Public catalog
// @Tags         catalog
// @Produce      json
// @Param        search     query     string  false  "Name or category search"
// @Param        category   query     string  false  "Category id"
// @Param        condition  query     string  false  "Item condition"
// @Success      200  {object}  map[string]any
// @Failure      502  {object}  map[string]any
// @Router       /v1/catalog [get]
func (h *CatalogHandler) Catalog(c echo.Context) error {
	return renderView(c, h.view)
}

// Categories lists product categories for filter drop-downs.
//
// @Summary      Categories
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   domain.Category
// @Failure      502  {object}  map[string]string
// @Router       /v1/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	cats, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cats)
}

// Product returns one public product.
//
// @Summary      Product detail
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  ports.ProductDetail
// @Failure      404  {object}  map[string]string
// @Router       /v1/products/{id} [get]
func (h *CatalogHandler) Product(c echo.Context) error {
	p, err := h.catalog.Product(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}
