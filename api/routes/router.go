package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopfolio/storefront/api/controllers"
	"github.com/shopfolio/storefront/api/middleware"
	sessionsvc "github.com/shopfolio/storefront/internal/session"
	"github.com/shopfolio/storefront/pkg/config"
	"github.com/shopfolio/storefront/pkg/logger"
	"github.com/shopfolio/storefront/pkg/metrics"
)

// NewRouter wires the session backend's routes. The session endpoints keep
// the flat paths the mobile client calls; health and metrics sit beside them.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store controllers.Pinger,
	sessionService sessionsvc.Service,
	registry *prometheus.Registry,
	m *metrics.SessionBackendMetrics,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(m),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, store))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Post("/create-checkout-session", controllers.CreateCheckoutSession(sessionService, m, logg))
	r.Get("/session-status/{sessionID}", controllers.SessionStatus(sessionService, m, logg))
	r.Get("/success", controllers.CheckoutSuccess(logg))
	r.Get("/cancel", controllers.CheckoutCancel(logg))

	return r
}
