package handler

import (
	"github.com/davena/flowcast/flowcast-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	accountHandler *AccountHandler,
	transactionHandler *TransactionHandler,
	recurrenceHandler *RecurrenceHandler,
	forecastHandler *ForecastHandler,
) {
	// API version 1, all routes workspace-authenticated and rate-limited
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Account routes
	accounts := api.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/balances", accountHandler.GetBalances)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Transaction routes
	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)

	// Recurrence rule routes
	rules := api.Group("/recurrence-rules")
	rules.POST("", recurrenceHandler.CreateRule)
	rules.GET("", recurrenceHandler.GetRules)
	rules.POST("/generate", recurrenceHandler.Generate)
	rules.GET("/:id", recurrenceHandler.GetRule)
	rules.PUT("/:id", recurrenceHandler.UpdateRule)
	rules.DELETE("/:id", recurrenceHandler.DeleteRule)

	// Forecast routes
	forecasts := api.Group("/forecasts")
	forecasts.POST("", forecastHandler.CreateForecast)
	forecasts.GET("", forecastHandler.GetForecast)
}
