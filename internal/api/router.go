package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Salvero/ecopulse-dashboard/internal/metrics"
)

// NewRouter assembles the full endpoint surface.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(instrument)

	r.Get("/", h.HandleRoot)
	r.Get("/health", h.HandleHealth)
	r.Post("/predict", h.HandlePredict)
	r.Post("/predict/batch", h.HandlePredictBatch)
	r.Get("/model/info", h.HandleModelInfo)
	r.Get("/telemetry/recent", h.HandleTelemetryRecent)
	r.Get("/ws/stream", h.HandleWebSocket)
	r.Get("/ws/clients", h.HandleClients)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// instrument records request counts and latency per route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = r.URL.Path
		}
		status := ww.Status()
		if status == 0 {
			// Hijacked connections (websocket upgrades) never write
			// a status through the wrapper.
			status = http.StatusSwitchingProtocols
		}
		metrics.RequestsTotal.WithLabelValues(pattern, r.Method, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(pattern, r.Method).Observe(time.Since(start).Seconds())
	})
}
