// Package httpapi assembles the HTTP surface: shared middleware, health and
// metrics endpoints, and the module handlers.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mockabis/pkg/platform/middleware/metadata"
	"mockabis/pkg/platform/middleware/recovery"
	"mockabis/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires middleware, /health/*, /metrics and every registrar.
func NewRouter(logger *slog.Logger, health *HealthHandler, gatherer prometheus.Gatherer, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(metadata.RequestID)
	r.Use(recovery.Recovery(logger))
	r.Use(recovery.Logging(logger))
	r.Use(requesttime.Middleware)

	health.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	for _, reg := range registrars {
		reg.Register(r)
	}
	return r
}
