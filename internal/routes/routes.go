package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/fitplay/internal/config"
	"github.com/example/fitplay/internal/events"
	"github.com/example/fitplay/internal/handlers"
	"github.com/example/fitplay/internal/middleware"
	"github.com/example/fitplay/internal/models"
	"github.com/example/fitplay/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, producer *events.Producer, rdb *redis.Client) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	ledger := services.NewWalletLedger(db)
	workflow := services.NewOrderWorkflow(db, ledger, producer, telegramService)
	analytics := services.NewAnalyticsService(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	companyHandler := handlers.NewCompanyHandler(db)
	userHandler := handlers.NewUserHandler(db, ledger)
	walletHandler := handlers.NewWalletHandler(db, ledger)
	orderHandler := handlers.NewOrderHandler(db, workflow)
	analyticsHandler := handlers.NewAnalyticsHandler(db, analytics, rdb)

	authRequired := middleware.AuthMiddleware(cfg)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleHR)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/claim", authHandler.Claim)
	auth.Get("/profile", authRequired, authHandler.GetProfile)
	auth.Put("/profile", authRequired, authHandler.UpdateProfile)

	// Catalog routes
	categories := api.Group("/categories", authRequired)
	catalogHandler.RegisterCategoryRoutes(categories, adminOnly)

	vendors := api.Group("/vendors", authRequired)
	catalogHandler.RegisterVendorRoutes(vendors, adminOnly)

	products := api.Group("/products", authRequired)
	productHandler.RegisterProductRoutes(products, adminOnly)

	// Directory routes
	companies := api.Group("/companies", authRequired)
	companyHandler.RegisterCompanyRoutes(companies, adminOnly)

	users := api.Group("/users", authRequired, staffOnly)
	userHandler.RegisterUserRoutes(users)
	users.Post("/:id/credits", walletHandler.AdjustCredits)

	// Wallet routes
	wallet := api.Group("/wallet", authRequired)
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Get("/transactions", walletHandler.ListTransactions)

	// Order routes
	orders := api.Group("/orders", authRequired)
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/all", staffOnly, orderHandler.ListAllOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id/status", adminOnly, orderHandler.UpdateStatus)

	// Analytics routes
	analyticsGroup := api.Group("/analytics", authRequired, staffOnly)
	analyticsHandler.RegisterAnalyticsRoutes(analyticsGroup)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
