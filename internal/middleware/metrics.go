package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The returned instance must also be registered on the app so /metrics is served.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	prom := fiberprometheus.New(serviceName)
	return prom
}

// MetricsMiddleware returns the Fiber handler that records per-request metrics.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
