package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"salonbook/internal/store"
)

const maxBodyBytes = 1 << 20

type RouterConfig struct {
	Appointments AppointmentsService
	Reports      ReportsService
	Catalog      store.CatalogReader
	Logger       *slog.Logger
	// Checks are probed by /health/ready, keyed by dependency name.
	Checks         map[string]Check
	ServiceName    string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "http"))

	h := &handlers{
		svc:     cfg.Appointments,
		reports: cfg.Reports,
		catalog: cfg.Catalog,
		log:     log,
	}
	health := &healthHandler{checks: cfg.Checks, service: cfg.ServiceName}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(withAccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(withBodyLimit(maxBodyBytes))
	r.Use(withTimeout(cfg.RequestTimeout))

	r.Get("/health/live", health.liveness)
	r.Get("/health/ready", health.readiness)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/employees", h.listEmployees)
		r.Get("/services", h.listServices)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", h.createAppointment)
		r.Get("/", h.listAppointments)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.getAppointment)
			r.Delete("/", h.deleteAppointment)
			r.Put("/status", h.setStatus)
			r.Put("/schedule", h.reschedule)
			r.Put("/rating", h.submitRating)
			r.Put("/response", h.respondToRating)
		})
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/counts", h.reportCounts)
		r.Get("/revenue", h.reportRevenue)
		r.Get("/ratings", h.averageRatings)
	})

	return otelhttp.NewHandler(r, "salonbook.http")
}
