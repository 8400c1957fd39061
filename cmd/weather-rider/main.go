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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	httpapi "github.com/i474232898/weather-rider/internal/api/http"
	"github.com/i474232898/weather-rider/internal/config"
	"github.com/i474232898/weather-rider/internal/geocode"
	"github.com/i474232898/weather-rider/internal/ride"
	"github.com/i474232898/weather-rider/internal/route"
	"github.com/i474232898/weather-rider/internal/scheduler"
	"github.com/i474232898/weather-rider/internal/store"
	"github.com/i474232898/weather-rider/internal/weather"
	"github.com/i474232898/weather-rider/internal/weather/providers"
	"github.com/i474232898/weather-rider/internal/web"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	var provider weather.Provider
	switch cfg.Provider {
	case config.ProviderOpenWeather:
		provider = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey)
	default:
		provider = providers.NewOpenMeteoProvider(httpClient)
	}
	log.Printf("INFO: using weather provider %s", provider.Name())

	// Open-Meteo geocoding needs no key; Google is tried first when configured.
	var geocoders geocode.Chain
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoders = append(geocoders, geocode.NewGoogle(cfg.GoogleGeocoderAPIKey))
	}
	geocoders = append(geocoders, geocode.NewOpenMeteo(httpClient))

	// Core service orchestrating the provider and store.
	service := weather.NewService(memStore, provider)

	routes := route.NewPlanner(route.NewOSRMClient(httpClient, cfg.OSRMBaseURL), cfg.FallbackSpeedKmh)
	rides := ride.NewPlanner(geocoders, service, routes, cfg.Thresholds)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatalf("failed to load templates: %v", err)
	}

	// Scheduler that periodically fetches and stores data.
	sched := scheduler.New(cfg.Locations, cfg.FetchInterval, service, geocoders)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-rider",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2*cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Weather:     service,
		Resolver:    geocoders,
		Routes:      routes,
		Rides:       rides,
		Renderer:    renderer,
		Prefs:       web.NewPrefs(cfg.SessionKey),
		DefaultCity: cfg.DefaultCity,
	})

	// Start server with graceful shutdown
	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
