package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/internal/handler"
	"github.com/prperemyshlev/storyboard-api/internal/repository"
	"github.com/prperemyshlev/storyboard-api/internal/service"
	"github.com/prperemyshlev/storyboard-api/pkg/observability"
)

const (
	serviceName     = "storyboard-api"
	shutdownTimeout = 5 * time.Second
)

type App struct {
	infra       Infrastructure
	config      *config.Config
	router      *gin.Engine
	server      *http.Server
	authService service.AuthService
}

type handlers struct {
	project *handler.ProjectHandler
	user    *handler.UserHandler
	auth    *handler.AuthHandler
	health  *HealthChecker
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	blacklistService := service.NewTokenBlacklistService(infra.Redis())
	rateLimiter := service.NewRateLimiter(infra.Redis())

	authService := service.NewAuthService(repos.User, repos.Token, blacklistService, infra.Logger())
	projectService := service.NewProjectService(repos.Project)
	userService := service.NewUserService(repos.User)

	h := handlers{
		project: handler.NewProjectHandler(projectService, cfg.API),
		user:    handler.NewUserHandler(userService, cfg.API),
		auth:    handler.NewAuthHandler(authService),
		health:  NewHealthChecker(infra),
	}

	httpMetrics, err := observability.NewHTTPMetrics(infra.MeterProvider().Meter(serviceName))
	if err != nil {
		return nil, fmt.Errorf("failed to register http metrics: %w", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(httpMetrics.Middleware())
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	writeLimit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
		infra.Logger(),
	)

	setupRoutes(router, cfg, h, authService, writeLimit, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:       infra,
		config:      cfg,
		router:      router,
		server:      srv,
		authService: authService,
	}, nil
}

// Router exposes the handler tree so it can be driven without a listener
func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	authService service.AuthService,
	writeLimit gin.HandlerFunc,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", h.health.Handler)

	api := router.Group(cfg.API.PathPrefix)
	{
		projects := api.Group("/projects", handler.OptionalAuthMiddleware(authService))
		{
			projects.GET("", h.project.List)
			projects.GET("/:id", h.project.Get)
			projects.POST("", writeLimit, handler.SuperuserRequired(), h.project.Create)
			projects.PUT("/:id", writeLimit, handler.SuperuserRequired(), h.project.Update)
			projects.DELETE("/:id", writeLimit, handler.SuperuserRequired(), h.project.Delete)
		}

		users := api.Group("/users", handler.AuthMiddleware(authService))
		{
			users.GET("", h.user.List)
			users.GET("/:id", h.user.Get)
		}

		auth := api.Group("/auth", handler.AuthMiddleware(authService))
		{
			auth.GET("/me", h.auth.Me)
			auth.DELETE("/token", h.auth.RevokeToken)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
			zap.String("path_prefix", a.config.API.PathPrefix),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var janitor *cron.Cron
	if interval := a.config.Security.TokenPurgeInterval.Duration; interval > 0 {
		var err error
		if janitor, err = a.startTokenJanitor(ctx, interval); err != nil {
			return errors.Join(err, a.Shutdown())
		}
	}

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if janitor != nil {
		// wait for a running purge before the database goes away
		<-janitor.Stop().Done()
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

// startTokenJanitor deletes expired access tokens every interval
func (a *App) startTokenJanitor(ctx context.Context, interval time.Duration) (*cron.Cron, error) {
	janitor := cron.New()

	_, err := janitor.AddFunc("@every "+interval.String(), func() {
		n, err := a.authService.PurgeExpired(ctx)
		if err != nil {
			a.infra.Logger().Warn("Expired token purge failed", zap.Error(err))
			return
		}
		if n > 0 {
			a.infra.Logger().Info("Purged expired access tokens", zap.Int64("count", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule token janitor: %w", err)
	}

	janitor.Start()
	a.infra.Logger().Info("Token janitor started", zap.Duration("interval", interval))

	return janitor, nil
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
