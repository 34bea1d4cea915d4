// Package routes defines the API routing configuration.
// It wires repositories, services and handlers together.
package routes

import (
	"paygate/internal/config"
	"paygate/internal/handlers"
	"paygate/internal/repositories"
	"paygate/internal/services/account"
	"paygate/internal/services/rail"
	"paygate/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, log *logrus.Logger) {
	ledgerRepo := repositories.NewLedgerRepository(db)

	railClient := newRailClient(log)
	breaker := rail.NewCircuitBreaker(railClient, rail.BreakerConfig{
		FailureThreshold: config.GetFloatEnv("BREAKER_FAILURE_THRESHOLD", rail.DefaultFailureThreshold),
		MinRequests:      config.GetIntEnv("BREAKER_MIN_REQUESTS", rail.DefaultMinRequests),
		Window:           config.GetDurationEnv("BREAKER_WINDOW", rail.DefaultWindow),
		Cooldown:         config.GetDurationEnv("BREAKER_COOLDOWN", rail.DefaultCooldown),
	}, log)

	transferService := transfer.NewService(
		ledgerRepo,
		breaker,
		repositories.CacheService,
		log,
		&transfer.NoopMetricsCollector{},
	)
	accountService := account.NewService(ledgerRepo, repositories.CacheService, log)

	transferHandler := handlers.NewTransferHandler(transferService)
	accountHandler := handlers.NewAccountHandler(accountService)

	app.Get("/health", handlers.HealthCheck)

	api := app.Group("/api")
	accounts := api.Group("/accounts")
	accounts.Post("/transfer", transferHandler.Transfer)
	accounts.Post("/", accountHandler.Create)
	accounts.Get("/", accountHandler.List)
	accounts.Get("/:id", accountHandler.Get)
	accounts.Delete("/:id", accountHandler.Delete)
}

// newRailClient picks the rail implementation. Stripe in production,
// simulated (random failure) everywhere else.
func newRailClient(log *logrus.Logger) rail.Client {
	if config.GetEnv("RAIL_PROVIDER", "simulated") == "stripe" {
		return rail.NewStripeClient(
			config.GetEnv("STRIPE_SECRET_KEY", ""),
			config.GetEnv("STRIPE_PAYMENT_METHOD", "pm_card_visa"),
			log,
		)
	}
	return rail.NewSimulatedClient(config.GetFloatEnv("RAIL_FAILURE_RATE", 0.5))
}
