package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Rud356/test-task-auth-demo/internal/core/port"
	"github.com/Rud356/test-task-auth-demo/internal/infra/config"
	"github.com/Rud356/test-task-auth-demo/internal/infra/database"
	kafkainfra "github.com/Rud356/test-task-auth-demo/internal/infra/kafka"
	"github.com/Rud356/test-task-auth-demo/internal/infra/logger"
	"github.com/Rud356/test-task-auth-demo/internal/infra/security"
	postgresrepo "github.com/Rud356/test-task-auth-demo/internal/repository/postgres"
	"github.com/Rud356/test-task-auth-demo/internal/transport/http/routes"
	"github.com/Rud356/test-task-auth-demo/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	kafka  *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	hasher, err := security.NewPasswordHasher(security.HashingSettings{
		Algorithm:  cfg.Security.HashAlgorithm,
		Iterations: cfg.Security.HashIterations,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init password hasher: %w", err)
	}

	tokenManager, err := security.NewTokenManager(cfg.Security.JWTSigningSecret, cfg.Security.SessionTokenTTL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init token manager: %w", err)
	}

	var (
		eventPublisher port.EventPublisher
		producer       *kafkainfra.Producer
	)
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
			producer = nil
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	repos := postgresrepo.NewRepositories(pool, hasher, security.SessionTokenGenerator{})
	passwordValidator := security.DefaultPasswordValidator()

	authService := usecase.NewAuthService(repos.Users, tokenManager, eventPublisher, log)
	userService := usecase.NewUserService(repos.Users, passwordValidator, eventPublisher, log)
	roleService := usecase.NewRoleService(repos.Roles, eventPublisher)
	resourceService := usecase.NewResourceService(repos.Resources)

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Database: pool,
		Services: routes.ServiceSet{
			Auth:      authService,
			Users:     userService,
			Roles:     roleService,
			Resources: resourceService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		kafka:  producer,
	}, nil
}

func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			if err := a.kafka.Close(); err != nil {
				a.logger.Warn("failed to close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case err := <-serverErrCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return nil
}
