package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/artistbooking/notification-service/internal/api/handler"
	apimw "github.com/artistbooking/notification-service/internal/api/middleware"
	"github.com/artistbooking/notification-service/internal/broker"
	"github.com/artistbooking/notification-service/internal/dispatch"
	"github.com/artistbooking/notification-service/internal/registry"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	engine *dispatch.Engine,
	subs registry.SubscriptionStore,
	tpls registry.TemplateStore,
	b *broker.Broker,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	nh := handler.NewNotificationHandler(engine, logger)
	sh := handler.NewSubscriptionHandler(subs, logger)
	th := handler.NewTemplateHandler(tpls, logger)
	mh := handler.NewMetricsHandler(b)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/notifications/push", nh.SendPush)
		r.Post("/notifications/email", nh.SendEmail)
		r.Post("/notifications/sms", nh.SendSMS)
		r.Post("/notifications/appointment-confirmation", nh.Confirmation)

		// Subscriptions — userId comes from the trusted X-User-ID header.
		r.Post("/subscriptions", sh.Register)
		r.Delete("/subscriptions", sh.Unregister)

		// Templates
		r.Get("/templates", th.List)
		r.Post("/templates", th.Save)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)
	})

	return r
}
