package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avenrae/avenrae-api/internal/bookings"
	"github.com/avenrae/avenrae-api/internal/healers"
	httpmiddleware "github.com/avenrae/avenrae-api/internal/http/middleware"
	"github.com/avenrae/avenrae-api/internal/observability/metrics"
	"github.com/avenrae/avenrae-api/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	BookingsHandler *bookings.Handler
	HealersHandler  *healers.Handler
	CalendarHandler http.Handler
	MetricsHandler  http.Handler
	HTTPMetrics     *metrics.HTTPMetrics

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// ReadinessChecks run on /health/ready; an empty list reports ready.
	ReadinessChecks []ReadinessCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.HTTPMetrics != nil {
		r.Use(httpmiddleware.Metrics(cfg.HTTPMetrics))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", Health)
		public.Get("/health/ready", Ready(cfg.ReadinessChecks, cfg.Logger))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitRPS > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		}
		api.Use(middleware.AllowContentType("application/json"))

		if cfg.BookingsHandler != nil {
			api.Route("/bookings", cfg.BookingsHandler.Routes)
		}
		if cfg.HealersHandler != nil {
			api.Route("/healers", func(h chi.Router) {
				cfg.HealersHandler.Routes(h)
				if cfg.BookingsHandler != nil {
					h.Get("/{id}/bookings", cfg.BookingsHandler.BookedSlots)
				}
			})
		}
		if cfg.CalendarHandler != nil {
			api.Handle("/calendar", cfg.CalendarHandler)
		}
	})

	return r
}
