package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-portal/internal/api/http"
	"github.com/spec-kit/support-portal/internal/api/http/handlers"
	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/feed"
	"github.com/spec-kit/support-portal/internal/gate"
	"github.com/spec-kit/support-portal/internal/notifier"
	"github.com/spec-kit/support-portal/internal/notify"
	"github.com/spec-kit/support-portal/internal/observability"
	"github.com/spec-kit/support-portal/internal/persistence"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/service"
	"github.com/spec-kit/support-portal/internal/summarize"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	profileRepo := repository.NewProfileRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	authService := service.NewAuthService(*cfg, profileRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MessageRepo: messageRepo,
		ProfileRepo: profileRepo,
	})

	chain := summarize.NewRefineChain(
		summarize.NewChatClient(cfg.Summarizer),
		summarize.NewSplitter(cfg.Summarizer.ChunkSize, cfg.Summarizer.ChunkOverlap),
	)
	summaryService := service.NewSummaryService(ticketRepo, messageRepo, chain, logger)

	roleResolver := gate.NewCachedRoleResolver(profileRepo, redis.Client, cfg.Gate.RoleCacheTTL())
	directoryService := service.NewDirectoryService(profileRepo, roleResolver, logger)

	dispatcher := events.NewInMemoryDispatcher()
	toaster := notify.NewRedisToaster(redis.Client, cfg.Notifier.ToastChannelBase)
	toastService := service.NewToastService(dispatcher, toaster, logger)
	toastService.RegisterHandlers()

	listener := feed.NewListener(pool, cfg.Notifier.FeedChannel, logger)
	ticketNotifier := notifier.New(listener, dispatcher, func(jobCtx context.Context, ticketID string) (string, error) {
		result, err := summaryService.Summarize(jobCtx, ticketID)
		if err != nil {
			return "", err
		}
		return result.Summary, nil
	}, cfg.Summarizer.JobTimeout(), logger)
	if err := ticketNotifier.Start(ctx); err != nil {
		logger.Fatal("failed to start ticket notifier", zap.Error(err))
	}
	defer ticketNotifier.Stop()

	authMiddleware := auth.NewMiddleware(authService.SessionManager(), profileRepo)
	accessGate := gate.New(gate.DefaultPolicy(), authService.SessionManager(), roleResolver, logger)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, summaryService),
		Admin:          handlers.NewAdminHandler(directoryService),
		Pages:          handlers.NewPagesHandler(cfg.App.Name),
		AuthMiddleware: authMiddleware,
		Gate:           accessGate,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
