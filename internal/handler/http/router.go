package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ckcelina/my-wishlist-sub005/internal/service"
	"github.com/ckcelina/my-wishlist-sub005/pkg/health"
	"github.com/ckcelina/my-wishlist-sub005/pkg/middleware"
)

// RouterConfig carries the dependencies the router needs beyond the services.
type RouterConfig struct {
	HealthHandler  *health.Handler
	TokenValidator middleware.TokenValidator
	AllowedOrigins []string
}

// NewRouter creates a chi router with all wishlist service routes registered.
func NewRouter(
	tracker *service.TrackerService,
	alerts *service.AlertService,
	availability *service.AvailabilityService,
	sharing *service.SharingService,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("wishlist"))
	r.Use(middleware.Tracing("wishlist"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	pricingHandler := NewPricingHandler(tracker, logger)
	alertHandler := NewAlertHandler(alerts, logger)
	storeHandler := NewStoreHandler(availability, logger)
	sharingHandler := NewSharingHandler(sharing, logger)

	// Guest endpoints (public, no auth)
	r.Route("/shared/{slug}", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Get("/", sharingHandler.GuestView)
		r.Post("/reservations", sharingHandler.Reserve)
		r.Delete("/reservations/{itemID}", sharingHandler.Release)
	})

	// Authenticated API endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Auth(cfg.TokenValidator))

		r.Route("/wishlists/{id}", func(r chi.Router) {
			r.Post("/refresh", pricingHandler.RefreshWishlist)
			r.Post("/share", sharingHandler.Share)
			r.Patch("/share", sharingHandler.UpdateShare)
			r.Get("/reservations", sharingHandler.OwnerReservations)
		})

		r.Route("/items/{id}", func(r chi.Router) {
			r.Get("/price-history", pricingHandler.PriceHistory)
			r.Get("/drop-info", pricingHandler.DropInfo)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/settings", alertHandler.GetSettings)
			r.Patch("/settings", alertHandler.UpdateSettings)
			r.Get("/targets", alertHandler.ListTargets)
		})

		r.Route("/stores", func(r chi.Router) {
			r.Post("/", storeHandler.CreateStore)
			r.Get("/", storeHandler.ListStores)
			r.Get("/{id}", storeHandler.GetStore)
			r.Post("/{id}/rules", storeHandler.AddShippingRule)
			r.Get("/{id}/availability", storeHandler.Availability)
		})

		r.Get("/me/location", storeHandler.GetLocation)
		r.Put("/me/location", storeHandler.SetLocation)
		r.Delete("/me/location", storeHandler.DeleteLocation)
	})

	return r
}
