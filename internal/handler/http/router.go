package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solavalia/reviews-service/pkg/health"
	"github.com/solavalia/reviews-service/pkg/middleware"
)

// RouterConfig bundles the dependencies needed to build the HTTP router.
type RouterConfig struct {
	ReviewHandler *ReviewHandler
	RatingHandler *RatingHandler
	Health        *health.Handler
	Logger        *slog.Logger
	ServiceName   string
	CORS          middleware.CORSConfig
}

// NewRouter builds the chi router with the full middleware chain and all
// routes. Moderation routes require a moderator or admin role.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Identity())
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", cfg.ReviewHandler.Submit)
			r.Get("/", cfg.ReviewHandler.List)
			r.Get("/{id}", cfg.ReviewHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(middleware.RoleModerator, middleware.RoleAdmin))
				r.Patch("/{id}/status", cfg.ReviewHandler.UpdateStatus)
				r.Patch("/{id}/feature", cfg.ReviewHandler.UpdateFeatured)
			})
		})

		r.Get("/providers/{id}/rating-summary", cfg.RatingHandler.ProviderSummary)
		r.Get("/solutions/{id}/rating-summary", cfg.RatingHandler.SolutionSummary)
	})

	return r
}
