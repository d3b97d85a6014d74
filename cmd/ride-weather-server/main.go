package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/ride-weather-dashboard/internal/api/http"
	"github.com/i474232898/ride-weather-dashboard/internal/briefing"
	"github.com/i474232898/ride-weather-dashboard/internal/config"
	"github.com/i474232898/ride-weather-dashboard/internal/dashboard"
	"github.com/i474232898/ride-weather-dashboard/internal/logging"
	"github.com/i474232898/ride-weather-dashboard/internal/places"
	"github.com/i474232898/ride-weather-dashboard/internal/render"
	"github.com/i474232898/ride-weather-dashboard/internal/route"
	"github.com/i474232898/ride-weather-dashboard/internal/scheduler"
	"github.com/i474232898/ride-weather-dashboard/internal/store"
	"github.com/i474232898/ride-weather-dashboard/internal/timezone"
	"github.com/i474232898/ride-weather-dashboard/internal/weather"
	"github.com/i474232898/ride-weather-dashboard/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logging.Init(cfg.Debug)

	// Shared HTTP client for outbound forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Forecast cache shared by all requests; purged on a schedule.
	cache := store.NewForecastCache(cfg.CacheTTL, cfg.CacheMaxEntries)

	backoff := providers.DefaultBackoff
	backoff.MaxRetries = cfg.ForecastMaxRetries
	backoff.InitialInterval = cfg.ForecastBackoff
	provider := weather.NewCachedProvider(
		providers.NewOpenMeteoProvider(httpClient,
			providers.WithBaseURL(cfg.ForecastBaseURL),
			providers.WithBackoff(backoff),
		),
		cache,
	)

	opts := []briefing.Option{briefing.WithDefaultSpeed(cfg.DefaultSpeedKmh)}
	if zones, err := timezone.NewService(); err != nil {
		log.Printf("WARN: timezone lookup unavailable, departure times are UTC: %v", err)
	} else {
		opts = append(opts, briefing.WithTimezones(zones))
	}
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, briefing.WithNamer(places.NewGoogleNamer(cfg.GeocoderAPIKey)))
	}

	pipeline := briefing.New(
		route.NewSampler(cfg.SampleIntervalKm),
		weather.NewCorrelator(provider, weather.WithWorkers(cfg.ForecastWorkers)),
		dashboard.NewComposer(render.Auto{}, cfg.ScalePresets),
		opts...,
	)

	sched := scheduler.New(cache, cfg.CachePurgeInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "ride-weather-dashboard",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          90 * time.Second,
		BodyLimit:             cfg.MaxUploadBytes,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "ok",
			"service":       "ride-weather-dashboard",
			"cachedEntries": cache.Len(),
		})
	})

	httpapi.RegisterRoutes(app, pipeline)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
