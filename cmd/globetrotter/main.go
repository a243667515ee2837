package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/globetrotter/internal/adapters/http"
	natsadapter "github.com/samirrijal/globetrotter/internal/adapters/nats"
	"github.com/samirrijal/globetrotter/internal/adapters/postgres"
	"github.com/samirrijal/globetrotter/internal/adapters/static"
	"github.com/samirrijal/globetrotter/internal/adapters/valkey"
	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/ports"
	"github.com/samirrijal/globetrotter/internal/core/usecases"
	"github.com/samirrijal/globetrotter/internal/pkg/config"
	"github.com/samirrijal/globetrotter/internal/pkg/logging"
	"github.com/samirrijal/globetrotter/internal/pkg/random"
	"github.com/samirrijal/globetrotter/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("globetrotter")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	deps := &http.Dependencies{}

	// Reference cities
	var cityRepo ports.CityRepository
	switch cfg.Cities.Source {
	case "file":
		repo, err := static.LoadCityFile(cfg.Cities.File)
		if err != nil {
			slog.Warn("city file unusable, falling back to builtin list", "file", cfg.Cities.File, "error", err)
			cityRepo = static.NewBuiltinCityRepo()
		} else {
			cityRepo = repo
		}
	case "postgres":
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		deps.DB = db
		cityRepo = postgres.NewCityRepo(db)
	default:
		cityRepo = static.NewBuiltinCityRepo()
	}
	slog.Info("reference cities configured", "source", cfg.Cities.Source)

	// Cache
	var cacheSvc ports.CacheService
	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			deps.Cache = cache
			cacheSvc = cache
		}
	}

	// NATS
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}

		// Raw NATS connection for WebSocket relay
		natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats ws conn unavailable", "error", err)
		} else {
			defer natsConn.Close()
			deps.NATS = natsConn
		}
	}

	// Use cases
	hub := http.NewHub(http.DefaultClientBuffer)
	animation := usecases.NewAnimationLoop(hub,
		time.Duration(cfg.Simulation.FrameIntervalMS)*time.Millisecond,
		cfg.Simulation.Spin,
	)
	defer animation.Stop()

	citySvc := usecases.NewCityService(cityRepo, cacheSvc)
	seed := domain.GeoPoint{Lat: cfg.Simulation.SeedLat, Lon: cfg.Simulation.SeedLon}
	journeys := usecases.NewJourneyService(seed, random.New(cfg.Simulation.RandomSeed), citySvc, publisher)
	journeys.Observe(usecases.NewPresenter(hub))
	journeys.Observe(usecases.NewSceneService(hub, animation))
	journeys.Start(ctx)

	if cfg.Simulation.Animate {
		animation.Start(ctx)
	}
	go usecases.RunDemo(ctx, journeys, cfg.Simulation.DemoRuns,
		time.Duration(cfg.Simulation.DemoDelayMS)*time.Millisecond,
		time.Duration(cfg.Simulation.DemoIntervalMS)*time.Millisecond,
	)

	deps.Journeys = journeys
	deps.Cities = citySvc
	deps.Animation = animation
	deps.Hub = hub

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "Globetrotter",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("globetrotter starting", "addr", addr, "session_id", journeys.SessionID())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
