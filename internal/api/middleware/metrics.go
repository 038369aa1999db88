package middleware

import (
	"sync"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

const metricsSubsystem = "storefront"

var (
	requestMetricsOnce sync.Once
	requestMetrics     echo.MiddlewareFunc
)

// Metrics records request count, latency and sizes per route template as
// storefront_* series on the default registry. The collectors are registered
// once per process, so every router shares them.
//
// Errors are handed to the error handler before the response is measured,
// so the recorded code is the one sent.
func Metrics() echo.MiddlewareFunc {
	requestMetricsOnce.Do(func() {
		requestMetrics = echoprometheus.NewMiddleware(metricsSubsystem)
	})
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return requestMetrics(func(c echo.Context) error {
			if err := next(c); err != nil {
				c.Error(err)
			}
			return nil
		})
	}
}
