package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/listing"
	"github.com/99minutos/storefront/internal/core/ports"
	"github.com/99minutos/storefront/internal/core/service"
)

type OrderHandler struct {
	screens  *service.Screens
	checkout ports.CheckoutService
}

func NewOrderHandler(screens *service.Screens, checkout ports.CheckoutService) *OrderHandler {
	return &OrderHandler{screens: screens, checkout: checkout}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped completed cancelled"`
}

type checkoutRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// List returns the order table for one side of the marketplace.
//
// @Summary      My orders
// @Tags         orders
// @Produce      json
// @Param        role    query     string  false  "sales (default) or purchases"
// @Param        tab     query     string  false  "Order status tab"
// @Param        search  query     string  false  "Order number or buyer name"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /v1/me/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	role := listing.OrderRole(c.QueryParam("role"))
	switch role {
	case "":
		role = listing.RoleSales
	case listing.RoleSales, listing.RolePurchases:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "role must be sales or purchases")
	}
	return renderView(c, h.screens.Orders(role))
}

// UpdateStatus moves an order along the order table statuses.
//
// @Summary      Update order status
// @Tags         orders
// @Accept       json
// @Param        id    path  string              true  "Order id"
// @Param        body  body  orderStatusRequest  true  "New status"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      422  {object}  map[string]any
// @Router       /v1/me/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.checkout.UpdateOrderStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Checkout buys one product now.
//
// @Summary      Buy now
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      checkoutRequest  true  "Product and quantity"
// @Success      201   {object}  domain.Order
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]any
// @Router       /v1/checkout [post]
func (h *OrderHandler) Checkout(c echo.Context) error {
	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	order, err := h.checkout.BuyNow(c.Request().Context(), req.ProductID, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}
