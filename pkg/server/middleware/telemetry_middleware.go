package middleware

import (
	"time"

	echo "github.com/labstack/echo/v4"

	"git.backbone/corpix/greeter/pkg/server/errors"
	"git.backbone/corpix/greeter/pkg/telemetry/collector"
	"git.backbone/corpix/greeter/pkg/telemetry/registry"
)

// NewTelemetry counts requests and observes their latency per route.
// The route is the registered path pattern, so path parameters do not
// explode label cardinality.
func NewTelemetry(r *registry.Registry, subsystem string) (echo.MiddlewareFunc, error) {
	h, err := collector.NewHTTP(r, subsystem)
	if err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = errors.StatusCode(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			h.Observe(c.Request().Method, route, status, time.Since(start))

			return err
		}
	}, nil
}
