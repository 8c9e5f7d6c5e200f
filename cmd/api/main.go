package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-portal/internal/api/http"
	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
	"github.com/spec-kit/helpdesk-portal/internal/config"
	"github.com/spec-kit/helpdesk-portal/internal/events"
	"github.com/spec-kit/helpdesk-portal/internal/observability"
	"github.com/spec-kit/helpdesk-portal/internal/persistence"
	"github.com/spec-kit/helpdesk-portal/internal/repository"
	"github.com/spec-kit/helpdesk-portal/internal/service"
	"github.com/spec-kit/helpdesk-portal/internal/worker"
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
	accountRepo := repository.NewAccountRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	sessions := auth.NewSessionStore(redis.Client, cfg.Auth.SessionTTL())
	codec := auth.NewTokenCodec(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL())
	gate := auth.NewGate(sessions, codec, accountRepo, cfg.Auth.CookieName, logger)

	dispatcher := events.NewInMemoryDispatcher()
	auditTrail := service.NewAuditTrail(auditRepo)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		AccountRepo: accountRepo,
		Audit:       auditTrail,
		Sessions:    sessions,
		Codec:       codec,
	}, logger)

	workflowService := service.NewWorkflowService(cfg.Workflow, service.WorkflowDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		AccountRepo: accountRepo,
		Audit:       auditTrail,
		Tx:          txRunner,
		Dispatcher:  dispatcher,
	}, logger)

	accountService := service.NewAccountService(cfg.Auth, service.AccountDependencies{
		AccountRepo: accountRepo,
		Audit:       auditTrail,
		Sessions:    sessions,
		Tx:          txRunner,
	}, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(pg, redis),
		Auth:     handlers.NewAuthHandler(authService, cfg.Auth),
		Tickets:  handlers.NewTicketsHandler(workflowService),
		Portal:   handlers.NewPortalHandler(workflowService),
		Accounts: handlers.NewAccountsHandler(accountService),
		Audit:    handlers.NewAuditHandler(auditTrail),
		Gate:     gate,
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
