package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	httpapi "github.com/i474232898/weather-map/internal/api/http"
	"github.com/i474232898/weather-map/internal/config"
	"github.com/i474232898/weather-map/internal/scheduler"
	"github.com/i474232898/weather-map/internal/store"
	"github.com/i474232898/weather-map/internal/view"
	"github.com/i474232898/weather-map/internal/weather"
	"github.com/i474232898/weather-map/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := newProvider(cfg, httpClient, logger)
	service := weather.NewService(provider, logger)

	sessions := store.NewSessionStore(cfg.SessionTTL, func() *view.WeatherView {
		return view.New(service, logger.Named("view"))
	})

	// Scheduler that periodically evicts idle sessions.
	sched := scheduler.New(sessions, cfg.SessionSweepInterval, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-map",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(httpapi.RequestLogger(logger))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-map",
			"provider": service.ProviderName(),
			"sessions": sessions.Len(),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Sessions: sessions,
		Weather:  service,
		Map:      cfg.Map,
		Logger:   logger,
	})

	go func() {
		logger.Info("starting http server",
			zap.String("port", cfg.Port),
			zap.String("provider", service.ProviderName()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}

func newProvider(cfg *config.AppConfig, client *http.Client, logger *zap.Logger) weather.Provider {
	switch cfg.Provider {
	case config.ProviderWeatherAPI:
		return providers.NewWeatherAPIProvider(client, providers.Options{
			APIKey:     cfg.WeatherAPIKey,
			BaseURL:    cfg.WeatherAPIBaseURL,
			MaxRetries: cfg.ProviderMaxRetries,
			Logger:     logger,
		})
	default:
		return providers.NewOpenWeatherProvider(client, providers.Options{
			APIKey:          cfg.OpenWeatherAPIKey,
			BaseURL:         cfg.OpenWeatherBaseURL,
			IconURLTemplate: cfg.IconURLTemplate,
			MaxRetries:      cfg.ProviderMaxRetries,
			Logger:          logger,
		})
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
