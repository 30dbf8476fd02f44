package server

import (
	"github.com/labstack/echo/v4"

	"example.com/daily-budget/backend/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	budgetHandler *handlers.BudgetHandler,
	bankHandler *handlers.BankHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	bankRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	api := e.Group("/api/v1")
	authGroup := api.Group("/auth", authRateLimiter)

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", authHandler.Me, authMiddleware)

	profile := api.Group("/profile", authMiddleware)
	profile.GET("", profileHandler.Get)
	profile.PUT("", profileHandler.Update)

	budget := api.Group("/budget", authMiddleware)
	budget.GET("", budgetHandler.Snapshot)
	budget.POST("/forecast", budgetHandler.Forecast)
	budget.GET("/variance", budgetHandler.Variance)

	bankGroup := api.Group("/bank", authMiddleware, bankRateLimiter)
	bankGroup.POST("/connect", bankHandler.Connect)
	bankGroup.POST("/connect/complete", bankHandler.CompleteConsent)
	bankGroup.GET("/items", bankHandler.ListItems)
	bankGroup.POST("/items/:itemId/reconnect", bankHandler.Reconnect)
	bankGroup.POST("/items/:itemId/reconnect/complete", bankHandler.CompleteConsent)
	bankGroup.POST("/items/:itemId/sync", bankHandler.Sync)
	bankGroup.DELETE("/items/:itemId", bankHandler.Remove)

	transactions := api.Group("/transactions", authMiddleware)
	transactions.GET("", bankHandler.ListTransactions)

	notificationsGroup := api.Group("/notifications", authMiddleware)
	notificationsGroup.GET("/stream", notificationHandler.Stream)
}
