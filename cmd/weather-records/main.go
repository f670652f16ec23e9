package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/time/rate"

	httpapi "github.com/avelko/weather-records/internal/api/http"
	"github.com/avelko/weather-records/internal/config"
	"github.com/avelko/weather-records/internal/location"
	"github.com/avelko/weather-records/internal/scheduler"
	"github.com/avelko/weather-records/internal/store"
	"github.com/avelko/weather-records/internal/weather"
	"github.com/avelko/weather-records/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls; per-call timeouts
	// come from contexts inside the clients.
	httpClient := &http.Client{}
	limiter := rate.NewLimiter(rate.Limit(cfg.ProviderRPS), cfg.ProviderBurst)

	openWeather := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, cfg.ProviderTimeout, limiter)
	openMeteo := providers.NewOpenMeteoClient(httpClient, cfg.ArchiveTimeout)

	resolver := location.NewResolver(openWeather)
	service := weather.NewService(openWeather, openMeteo)

	// Record store; schema is created if absent.
	st, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open record store: %v", err)
	}
	defer st.Close()

	// Optional retention pruning.
	pruner := scheduler.NewPruner(st, cfg.RetentionMaxAge, cfg.RetentionInterval)
	if err := pruner.Start(); err != nil {
		log.Fatalf("failed to start pruner: %v", err)
	}
	defer pruner.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-records",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// API routes.
	httpapi.NewHandler(resolver, service, st, cfg.MaxListLimit).Register(app)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
