package main

import (
	"log"

	"kamatrack/internal/catalog"
	"kamatrack/internal/config"
	"kamatrack/internal/database"
	"kamatrack/internal/email"
	"kamatrack/internal/handlers"
	"kamatrack/internal/logger"
	"kamatrack/internal/middleware"
	"kamatrack/internal/pricing"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.Initialize(logger.ParseLevel(cfg.LogLevel))

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	calc, err := pricing.NewCalculator(cfg.PaymentLimit, cfg.MaxXP)
	if err != nil {
		log.Fatal("Invalid pricing configuration:", err)
	}

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogTimeout)

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		logger.Info("Bargain alerts enabled with Mailgun")
	} else {
		logger.Info("Bargain alerts disabled - Mailgun not configured")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(cfg))

	handlers.SetupRoutes(r, db, calc, catalogClient, emailService)

	logger.Info("Server starting", "port", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}
