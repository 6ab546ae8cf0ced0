package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Rud356/test-task-auth-demo/internal/infra/config"
	"github.com/Rud356/test-task-auth-demo/internal/transport/http/handlers"
	"github.com/Rud356/test-task-auth-demo/internal/transport/http/middleware"
	"github.com/Rud356/test-task-auth-demo/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth      *usecase.AuthService
	Users     *usecase.UserService
	Roles     *usecase.RoleService
	Resources *usecase.ResourceService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config   *config.AppConfig
	Logger   *zap.Logger
	Services ServiceSet
	Database DatabaseChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))

	if metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{}); err == nil {
		r.Use(metrics.Handler())
	} else if deps.Logger != nil {
		deps.Logger.Warn("failed to register HTTP metrics", zap.Error(err))
	}

	healthOptions := make([]handlers.HealthOption, 0, 1)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(deps.Services.Auth)
	cookieSecure := deps.Config.App.Env == "production"

	root := r.Group("/")

	authHandler := handlers.NewAuthHandler(deps.Services.Auth, cookieSecure)
	authHandler.RegisterRoutes(root, requireAuth)

	userHandler := handlers.NewUserHandler(deps.Services.Users)
	userHandler.RegisterRoutes(root, requireAuth)

	roleHandler := handlers.NewRoleHandler(deps.Services.Roles)
	roleHandler.RegisterRoutes(root, requireAuth)

	resourceHandler := handlers.NewResourceHandler(deps.Services.Resources)
	resourceHandler.RegisterRoutes(root, requireAuth)

	return r
}
