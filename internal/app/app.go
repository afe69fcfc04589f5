package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pocketmint/pocketmint-api/internal/aggregator"
	"github.com/pocketmint/pocketmint-api/internal/config"
	"github.com/pocketmint/pocketmint-api/internal/handler"
	"github.com/pocketmint/pocketmint-api/internal/notification"
	"github.com/pocketmint/pocketmint-api/internal/repository"
	"github.com/pocketmint/pocketmint-api/internal/service"
	"github.com/pocketmint/pocketmint-api/internal/utils"
	"github.com/pocketmint/pocketmint-api/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// tokenCleanupInterval paces the background sweep of expired token rows.
// Expired tokens are already rejected on read; the sweep only keeps the
// table from growing unbounded.
const tokenCleanupInterval = time.Hour

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
	tokens repository.TokenRepository
}

// Option overrides a collaborator during app construction. Production wiring
// needs none of these; tests use them to swap in deterministic doubles.
type Option func(*options)

type options struct {
	otpSource  utils.OTPSource
	publisher  notification.Publisher
	aggregator aggregator.Client
	hasher     utils.PasswordHasher
}

func WithOTPSource(source utils.OTPSource) Option {
	return func(o *options) { o.otpSource = source }
}

func WithPublisher(publisher notification.Publisher) Option {
	return func(o *options) { o.publisher = publisher }
}

func WithAggregatorClient(client aggregator.Client) Option {
	return func(o *options) { o.aggregator = client }
}

func WithPasswordHasher(hasher utils.PasswordHasher) Option {
	return func(o *options) { o.hasher = hasher }
}

func NewApp(infra Infrastructure, cfg *config.Config, opts ...Option) *App {
	o := &options{
		otpSource:  utils.NewOTPSource(),
		publisher:  notification.NewLogPublisher(infra.Logger()),
		aggregator: aggregator.NewHTTPClient(cfg.Aggregator.BaseURL, cfg.Aggregator.APIKey, cfg.Aggregator.Timeout.Duration),
		hasher:     utils.NewBcryptHasher(cfg.Security.BCryptCost),
	}
	for _, opt := range opts {
		opt(o)
	}

	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		repos.LinkedAccount,
		jwtManager,
		o.otpSource,
		o.hasher,
		o.publisher,
		o.aggregator,
		infra.Logger(),
		cfg.Auth.OTPExpiry.Duration,
		cfg.Auth.SignupFlowTokenExpiry.Duration,
	)

	authHandler := handler.NewAuthHandler(authService)

	router := gin.Default()
	router.Use(otelgin.Middleware("pocketmint-api"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
		tokens: repos.Token,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	throttled := func() gin.HandlerFunc {
		return handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)
	}

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/initiate-signup-otp", throttled(), authHandler.InitiateSignupOTP)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/complete-signup", authHandler.CompleteSignup)
			auth.POST("/login", throttled(), authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", handler.AuthMiddleware(authService), authHandler.Logout)
			auth.POST("/forgot-password", throttled(), authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/resend-otp", throttled(), authHandler.ResendOTP)
			auth.GET("/me", handler.AuthMiddleware(authService), authHandler.GetMe)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go a.sweepExpiredTokens(ctx)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
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

// sweepExpiredTokens periodically deletes expired token rows until the
// context is cancelled.
func (a *App) sweepExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.tokens.DeleteExpired(ctx); err != nil {
				a.infra.Logger().Warn("Expired token sweep failed", zap.Error(err))
			}
		}
	}
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
