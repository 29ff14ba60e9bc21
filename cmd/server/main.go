package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/alerting"
	"github.com/Salvero/ecopulse-dashboard/internal/api"
	"github.com/Salvero/ecopulse-dashboard/internal/cache"
	"github.com/Salvero/ecopulse-dashboard/internal/config"
	"github.com/Salvero/ecopulse-dashboard/internal/forecast"
	"github.com/Salvero/ecopulse-dashboard/internal/history"
	"github.com/Salvero/ecopulse-dashboard/internal/randx"
	"github.com/Salvero/ecopulse-dashboard/internal/telemetry"
	"github.com/Salvero/ecopulse-dashboard/internal/websocket"
)

func main() {
	configPath := flag.String("config", ".", "Path to the configuration file directory")
	devLogging := flag.Bool("dev", false, "Use human-readable development logging")
	flag.Parse()

	logger := newLogger(*devLogging)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	logger.Info("EcoPulse Analytics API starting",
		zap.String("api_version", config.APIVersion),
		zap.Int("port", cfg.Server.Port))

	// Engine mode is decided exactly once: Real when the trained
	// artifact is on disk, otherwise the heuristic runs in Mock mode.
	mode := forecast.ModeReal
	if _, err := os.Stat(cfg.Model.Path); err != nil {
		mode = forecast.ModeMock
		logger.Warn("model artifact not found, falling back to mock mode",
			zap.String("model_path", cfg.Model.Path))
	}

	rng := randx.New()
	engine := forecast.NewEngine(mode, cfg.Model.Version, rng)
	batch := forecast.NewBatchCoordinator(engine, logger)
	hub := websocket.NewHub(logger)
	alerter := alerting.NewAlerter(hub, logger)
	generator := telemetry.NewGenerator(cfg.Stream.SensorID, rng)
	buffer := history.NewBuffer(cfg.Stream.HistorySize)
	scheduler := websocket.NewScheduler(generator, buffer, cfg.Stream.TickInterval, logger)

	var forecastCache *cache.ForecastCache
	if cfg.Redis.Enabled {
		forecastCache, err = cache.NewForecastCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.Warn("redis unavailable, continuing without forecast cache", zap.Error(err))
			forecastCache = nil
		} else {
			defer forecastCache.Close()
			logger.Info("forecast cache connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go hub.Run(ctx)

	handler := api.NewHandler(ctx, engine, batch, hub, scheduler, buffer, alerter, forecastCache, cfg.Model.Path, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler, cfg.CORS.AllowedOrigins),
	}

	go func() {
		logger.Info("listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(dev bool) *zap.Logger {
	if dev {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}
