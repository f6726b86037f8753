package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/maintenance-tracker/internal/api/http"
	"github.com/spec-kit/maintenance-tracker/internal/api/http/handlers"
	"github.com/spec-kit/maintenance-tracker/internal/auth"
	"github.com/spec-kit/maintenance-tracker/internal/config"
	"github.com/spec-kit/maintenance-tracker/internal/events"
	"github.com/spec-kit/maintenance-tracker/internal/observability"
	"github.com/spec-kit/maintenance-tracker/internal/persistence"
	"github.com/spec-kit/maintenance-tracker/internal/repository"
	"github.com/spec-kit/maintenance-tracker/internal/service"
	"github.com/spec-kit/maintenance-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := events.NewInMemoryDispatcher()
	var redis *persistence.Redis
	if cfg.Redis.Enabled() {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		dispatcher = events.NewRedisDispatcher(dispatcher, redis.Client, cfg.Redis.Channel, logger)
	}

	ticketRepo := repository.NewMemoryTicketRepository()
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	if cfg.Seed.Enabled {
		seeder := service.NewSeeder(ticketService, cfg.Seed.Delay(), logger)
		seeder.Start(ctx)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis),
		Session:        handlers.NewSessionHandler(tokens),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Stats:          handlers.NewStatsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
