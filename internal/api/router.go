package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/notifyhub/ms-notification-kafka/internal/api/handler"
	apimw "github.com/notifyhub/ms-notification-kafka/internal/api/middleware"
	"github.com/notifyhub/ms-notification-kafka/internal/service"
	"github.com/notifyhub/ms-notification-kafka/internal/stream"
)

// BasePath prefixes every gateway route.
const BasePath = "/api/ms-notification-kafka"

// Options holds the optional router settings.
type Options struct {
	CORSOrigins     []string
	StreamHeartbeat time.Duration
	ReadyChecks     []handler.ReadyCheck
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.DispatchService,
	hub *stream.Hub,
	reg prometheus.Gatherer,
	logger *zap.Logger,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", apimw.CorrelationIDHeader},
		ExposedHeaders: []string{apimw.CorrelationIDHeader},
		MaxAge:         300,
	}))
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	dh := handler.NewDispatchHandler(svc, logger)
	sh := handler.NewStatusHandler(svc)
	lh := handler.NewLedgerHandler(svc)
	st := handler.NewStreamHandler(hub, opts.StreamHeartbeat, logger)
	hh := handler.NewHealthHandler(opts.ReadyChecks...)

	// --- routes ---
	r.Get("/health", hh.Health)
	r.Get("/readyz", hh.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/publish/simple", dh.PublishSimple)
		r.Post("/publish/notification-created", dh.PublishCreated)
		r.Post("/publish/notification-updated", dh.PublishUpdated)
		r.Delete("/publish/notification-deleted/{id}", dh.PublishDeleted)

		r.Get("/status", sh.Status)
		r.Get("/stream", st.Stream)

		r.Get("/dispatches", lh.List)
		r.Get("/dispatches/{key}", lh.GetByKey)
	})

	return otelhttp.NewHandler(r, "ms-notification-kafka")
}
