package http

import (
	"log/slog"
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"lotcli/internal/config"
	apierrors "lotcli/internal/errors"
	"lotcli/internal/infrastructure"
	"lotcli/internal/middleware"
	"lotcli/internal/services"
)

// NewRouter assembles the full HTTP surface: the analysis API, health and
// Prometheus metrics, behind the standard middleware chain.
func NewRouter(cfg config.ServerConfig, service *services.AnalysisService, providers *infrastructure.OTelProviders, logger *slog.Logger) stdhttp.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Compress(5))
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(logger)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	var metrics *infrastructure.AnalysisMetrics
	if providers != nil {
		metrics = providers.Metrics
	}

	r.Route("/api", func(r chi.Router) {
		NewAnalysisHandler(service, metrics, logger).RegisterRoutes(r)
		NewHealthHandler().RegisterRoutes(r)
	})

	if providers != nil && providers.PrometheusHTTP != nil {
		r.Method(stdhttp.MethodGet, "/metrics", providers.PrometheusHTTP)
	}

	return r
}
