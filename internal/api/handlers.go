// Package api wires the HTTP and WebSocket surface onto the core.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	gwebsocket "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/alerting"
	"github.com/Salvero/ecopulse-dashboard/internal/cache"
	"github.com/Salvero/ecopulse-dashboard/internal/config"
	"github.com/Salvero/ecopulse-dashboard/internal/data"
	"github.com/Salvero/ecopulse-dashboard/internal/forecast"
	"github.com/Salvero/ecopulse-dashboard/internal/history"
	"github.com/Salvero/ecopulse-dashboard/internal/metrics"
	"github.com/Salvero/ecopulse-dashboard/internal/websocket"
)

var upgrader = gwebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler carries the dependencies of every endpoint. A nil engine
// means the inference core is unavailable and the forecasting
// endpoints fail fast with 503.
type Handler struct {
	engine    *forecast.Engine
	batch     *forecast.BatchCoordinator
	hub       *websocket.Hub
	scheduler *websocket.Scheduler
	buffer    *history.Buffer
	alerter   *alerting.Alerter
	cache     *cache.ForecastCache
	modelPath string
	logger    *zap.Logger

	// ctx bounds every per-connection stream loop to the process
	// lifetime.
	ctx context.Context
	now func() time.Time
}

func NewHandler(
	ctx context.Context,
	engine *forecast.Engine,
	batch *forecast.BatchCoordinator,
	hub *websocket.Hub,
	scheduler *websocket.Scheduler,
	buffer *history.Buffer,
	alerter *alerting.Alerter,
	forecastCache *cache.ForecastCache,
	modelPath string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:    engine,
		batch:     batch,
		hub:       hub,
		scheduler: scheduler,
		buffer:    buffer,
		alerter:   alerter,
		cache:     forecastCache,
		modelPath: modelPath,
		logger:    logger,
		ctx:       ctx,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleRoot answers the service banner.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "EcoPulse Analytics API",
		"docs":    "/model/info",
	})
}

// HandleHealth reports readiness; 503 until the engine is available.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if h.engine == nil {
		h.respondError(w, http.StatusServiceUnavailable, "model not loaded - service unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, data.HealthResponse{
		Status:       "healthy",
		ModelLoaded:  true,
		ModelVersion: h.engine.ModelVersion(),
		APIVersion:   config.APIVersion,
		Timestamp:    h.now(),
	})
}

// HandlePredict runs one forecast. Boundary validation happens here,
// before the core ever sees the window.
func (h *Handler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	var req data.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "cannot parse JSON body")
		return
	}
	if err := data.ValidateRequest(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.engine == nil {
		h.respondError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	h.logger.Info("inference request received",
		zap.String("sensor_id", req.SensorID),
		zap.Int("data_points", len(req.RecentUsage)))

	if h.cache != nil {
		if resp, ok := h.cache.Get(r.Context(), &req); ok {
			metrics.CacheHits.Inc()
			h.respondJSON(w, http.StatusOK, resp)
			return
		}
		metrics.CacheMisses.Inc()
	}

	resp, err := h.batch.ProcessOne(req)
	if err != nil {
		h.logger.Error("inference failed",
			zap.String("sensor_id", req.SensorID), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "inference failed")
		return
	}

	h.logger.Info("inference complete",
		zap.String("sensor_id", resp.SensorID),
		zap.Float64("predicted", resp.PredictedUsage),
		zap.Bool("anomaly", resp.AnomalyDetected))

	h.alerter.ProcessForecast(resp)

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), &req, resp); err != nil {
			h.logger.Warn("failed to cache forecast", zap.Error(err))
		}
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// HandlePredictBatch forecasts many sensors in one call. Validation
// is atomic over the whole batch; runtime faults after acceptance are
// isolated per item.
func (h *Handler) HandlePredictBatch(w http.ResponseWriter, r *http.Request) {
	var req data.BatchPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "cannot parse JSON body")
		return
	}
	if err := data.ValidateBatch(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.engine == nil {
		h.respondError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	h.logger.Info("batch inference request", zap.Int("sensors", len(req.Sensors)))

	results := h.batch.Process(req.Sensors)
	for _, resp := range results {
		h.alerter.ProcessForecast(resp)
	}
	h.respondJSON(w, http.StatusOK, results)
}

// HandleModelInfo returns static engine metadata.
func (h *Handler) HandleModelInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"model_path":    h.modelPath,
		"is_loaded":     h.engine != nil,
		"input_shape":   "[batch_size, 24, 1]",
		"output_shape":  "[batch_size, 1]",
		"architecture":  "LSTM (2 layers, 64 units each)",
		"training_data": "Industrial facility consumption logs (simulated)",
	}
	if h.engine != nil {
		info["mode"] = string(h.engine.Mode())
		info["model_version"] = h.engine.ModelVersion()
		info["load_time"] = h.engine.LoadTime()
	}
	h.respondJSON(w, http.StatusOK, info)
}

// HandleTelemetryRecent returns the newest buffered samples.
func (h *Handler) HandleTelemetryRecent(w http.ResponseWriter, r *http.Request) {
	count := 50
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.respondError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}
	h.respondJSON(w, http.StatusOK, h.buffer.Recent(count))
}

// HandleWebSocket upgrades the connection, registers the subscriber
// and starts its private streaming loop.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := websocket.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	h.sendHistory(client)

	go client.WritePump()
	go client.ReadPump()
	go func() {
		h.scheduler.Run(h.ctx, client)
		h.hub.Disconnect(client)
	}()

	h.logger.Info("websocket connection established",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", conn.RemoteAddr().String()))
}

// sendHistory pushes recent samples to a fresh subscriber, before the
// per-tick stream takes over. Skipped when the buffer is empty.
func (h *Handler) sendHistory(client *websocket.Client) {
	samples := h.buffer.Recent(0)
	if len(samples) == 0 {
		return
	}
	frame, err := json.Marshal(map[string]any{"type": "history", "payload": samples})
	if err != nil {
		h.logger.Error("failed to marshal history frame", zap.Error(err))
		return
	}
	if !client.Enqueue(frame) {
		h.logger.Warn("failed to enqueue history frame",
			zap.String("client_id", client.ID))
	}
}

// HandleClients reports the number of connected stream subscribers.
func (h *Handler) HandleClients(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, data.ClientsResponse{
		ActiveConnections: h.hub.Count(),
		Timestamp:         h.now(),
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, detail string) {
	h.respondJSON(w, status, map[string]string{"detail": detail})
}
