package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/daily-budget/backend/internal/auth"
	"example.com/daily-budget/backend/internal/bank"
	"example.com/daily-budget/backend/internal/config"
	"example.com/daily-budget/backend/internal/handlers"
	"example.com/daily-budget/backend/internal/link"
	"example.com/daily-budget/backend/internal/notifications"
	"example.com/daily-budget/backend/internal/repository"
	appsync "example.com/daily-budget/backend/internal/sync"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	itemRepo := repository.NewBankItemRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	notificationHub := notifications.NewHub()

	bankClient := bank.NewHTTPClient(cfg.Bank.BaseURL, cfg.Bank.ClientID, cfg.Bank.Secret, cfg.Bank.Timeout)
	syncer := appsync.NewSyncer(bankClient, itemRepo, notificationHub, logger, cfg.Bank.SyncWindowDays)
	linkManager := link.NewManager(bankClient, itemRepo, syncer, notificationHub, logger)

	authHandler := handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager)
	profileHandler := handlers.NewProfileHandler(profileRepo, notificationHub)
	budgetHandler := handlers.NewBudgetHandler(profileRepo, transactionRepo)
	bankHandler := handlers.NewBankHandler(linkManager, itemRepo, transactionRepo, syncer, logger)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		authHandler,
		profileHandler,
		budgetHandler,
		bankHandler,
		notificationHandler,
		auth.JWTMiddleware(tokenManager),
		rateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		rateLimiter(cfg.Bank.RateLimitPerMinute, cfg.Bank.RateLimitBurst),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func rateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
