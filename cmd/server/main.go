package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/smartcity/trafficsim/internal/config"
	"github.com/smartcity/trafficsim/internal/delivery/http"
	"github.com/smartcity/trafficsim/internal/logging"
	"github.com/smartcity/trafficsim/internal/publisher"
	"github.com/smartcity/trafficsim/internal/repository/postgres"
	"github.com/smartcity/trafficsim/internal/scheduler"
	"github.com/smartcity/trafficsim/internal/service"
)

func main() {
	// Configuration
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Dependency Injection: Repositories
	dataRepo, closeRepo := openRepository(ctx, cfg, log)
	defer closeRepo()

	// Dependency Injection: Publisher
	var snapshotPub service.SnapshotPublisher
	if cfg.KafkaEnabled {
		producer, err := publisher.NewSaramaProducer(cfg.Brokers())
		if err != nil {
			log.WithError(err).Warn("Kafka unavailable, snapshots will not be published")
		} else {
			snapshotPub = publisher.NewKafkaOutput(producer, cfg.KafkaTopic)
			log.WithField("brokers", cfg.Brokers()).Info("Publishing snapshots to Kafka")
		}
	}
	if snapshotPub == nil && cfg.ConsoleSink {
		snapshotPub = publisher.NewConsoleOutput(os.Stdout, cfg.KafkaTopic)
	}

	// Dependency Injection: Services
	rng := service.NewLockedRandom(cfg.RandomSeed)
	trafficSvc := service.NewTrafficService(rng)
	predictionSvc := service.NewPredictionService(trafficSvc, rng)
	dashboardSvc := service.NewDashboardService(trafficSvc, dataRepo, snapshotPub, log)
	poller := scheduler.NewPoller(dashboardSvc, cfg.RefreshInterval, log)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:               "TrafficSim API v1.0",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          http.ErrorHandler,
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, http.NewHandler(trafficSvc, predictionSvc, dashboardSvc, log))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Server starting")
		return app.Listen(":" + cfg.Port)
	})

	g.Go(func() error {
		return poller.Run(gctx)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server stopped with error")
	}

	dashboardSvc.WaitBackground()
	if snapshotPub != nil {
		if err := snapshotPub.Close(); err != nil {
			log.WithError(err).Warn("Failed to close publisher")
		}
	}
	log.Info("Server exited gracefully")
}

// openRepository connects to PostgreSQL, falling back to the in-memory repository
func openRepository(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (service.SnapshotRepository, func()) {
	inMemory := func() (service.SnapshotRepository, func()) {
		return postgres.NewMockRepository(cfg.HistoryLimit), func() {}
	}

	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, keeping snapshots in memory")
		return inMemory()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(connectCtx)
	}
	if err != nil {
		log.WithError(err).Warn("Could not connect to database, keeping snapshots in memory")
		if pool != nil {
			pool.Close()
		}
		return inMemory()
	}

	repo := postgres.NewPostgresRepository(pool, cfg.HistoryLimit)
	if err := repo.Migrate(connectCtx); err != nil {
		log.WithError(err).Warn("Schema migration failed, keeping snapshots in memory")
		pool.Close()
		return inMemory()
	}

	log.Info("Connected to PostgreSQL")
	return repo, pool.Close
}
