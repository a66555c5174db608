package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/frejen/ticketd/internal/api/http"
	"github.com/frejen/ticketd/internal/api/http/handlers"
	"github.com/frejen/ticketd/internal/auth"
	"github.com/frejen/ticketd/internal/config"
	"github.com/frejen/ticketd/internal/observability"
	"github.com/frejen/ticketd/internal/persistence"
	"github.com/frejen/ticketd/internal/repository"
	"github.com/frejen/ticketd/internal/service"
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
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	stateRepo := repository.NewStateRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	revoker := auth.NewSessionRevoker(redis.Client)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		TokenManager:   tokenMgr,
		Revoker:        revoker,
		BcryptCost:     cfg.Auth.BcryptCost,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		TokenManager:   tokenMgr,
		BcryptCost:     cfg.Auth.BcryptCost,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		StateRepo:      stateRepo,
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		PageSize:       cfg.Pagination.TicketsPageSize,
	})
	departmentService := service.NewDepartmentService(departmentRepo, cfg.Pagination.DepartmentsPageSize)
	stateService := service.NewStateService(stateRepo)

	authMiddleware := auth.NewAuthMiddleware(tokenMgr, revoker, userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Users:          handlers.NewUsersHandler(userService),
		Departments:    handlers.NewDepartmentsHandler(departmentService),
		States:         handlers.NewStatesHandler(stateService),
		AuthMiddleware: authMiddleware,
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
