package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/storefront/internal/core/service"
)

// PromoHandler serves the launch countdown banner.
type PromoHandler struct {
	countdown *service.Countdown
}

// NewPromoHandler accepts a nil countdown when no launch is configured.
func NewPromoHandler(countdown *service.Countdown) *PromoHandler {
	return &PromoHandler{countdown: countdown}
}

type countdownResponse struct {
	Deadline  time.Time         `json:"deadline"`
	Remaining service.Remaining `json:"remaining"`
	Ended     bool              `json:"ended"`
}

// Countdown returns the time left until the launch.
//
// @Summary      Launch countdown
// @Tags         promo
// @Produce      json
// @Success      200  {object}  countdownResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/promo/countdown [get]
func (h *PromoHandler) Countdown(c echo.Context) error {
	if h.countdown == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no launch scheduled")
	}
	r := h.countdown.Remaining()
	return c.JSON(http.StatusOK, countdownResponse{
		Deadline:  h.countdown.Deadline(),
		Remaining: r,
		Ended:     r.Zero(),
	})
}
