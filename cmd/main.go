package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourbooking/api/handler"
	apiMiddleware "tourbooking/api/middleware"
	"tourbooking/api/routes"
	"tourbooking/config"
	"tourbooking/internal/repository"
	"tourbooking/internal/service"
	"tourbooking/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.Development() {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectionDb(cfg.DatabaseURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("database unavailable")
	}
	if err := repository.RunMigrations(ctx, db); err != nil {
		logger.WithError(err).Fatal("migrations failed")
	}

	validate := validator.New()
	accountRepo := repository.NewAccountRepository(db, validate)
	securityRepo := repository.NewSecurityLogRepository(db)

	tokens := utils.JWTManager{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		TokenTTL: cfg.JWTExpiresIn,
	}

	var notifier service.Notifier = service.LogNotifier{Logger: logger}
	if resendNotifier := service.NewResendNotifier(cfg.ResendAPIKey, cfg.MailFrom); resendNotifier.Configured() {
		notifier = resendNotifier
	} else {
		logger.Warn("RESEND_API_KEY or MAIL_FROM missing; password reset emails will only be logged")
	}

	authService := service.NewAuthService(
		accountRepo,
		securityRepo,
		notifier,
		service.NewPooledHasher(cfg.BcryptCost, cfg.HashWorkers),
		tokens,
		service.RealClock{},
		logger,
		service.AuthConfig{
			ResetTokenTTL:      10 * time.Minute,
			MinPasswordLength:  8,
			PasswordChangeSkew: time.Second,
		},
	)

	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.CookieDomain = cfg.CookieDomain
	authHandler.CookieTTL = cfg.JWTCookieExpiresIn
	authHandler.SecureCookies = cfg.Production()
	authHandler.BaseURL = cfg.BaseURL

	var limiter apiMiddleware.Limiter = apiMiddleware.NewWindowRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	if cfg.RedisURL != "" {
		redisClient, err := apiMiddleware.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("redis unavailable")
		}
		defer redisClient.Close()
		limiter = apiMiddleware.NewRedisRateLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.ErrorHandler(logger, cfg.Development())
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.BodyLimit("10K"))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":  v.Status,
				"method":  v.Method,
				"uri":     v.URI,
				"ip":      v.RemoteIP,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	router := routes.NewRouter(app, authHandler, authService, limiter, logger)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown failed")
		}
	}()

	logger.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "env": cfg.Env}).Info("server started")
	if err := app.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server stopped gracefully")
}
