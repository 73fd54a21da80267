package handlers

import (
	"database/sql"

	"kamatrack/internal/catalog"
	"kamatrack/internal/email"
	"kamatrack/internal/middleware"
	"kamatrack/internal/pricing"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, db *sql.DB, calc *pricing.Calculator, catalogClient *catalog.Client, emailService *email.Service) {
	r.Use(middleware.RequestID())
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.AddDBContext(db))
	r.Use(addPricingContext(calc))
	r.Use(addCatalogContext(catalogClient))
	r.Use(addEmailServiceContext(emailService))

	api := r.Group("/api")
	{
		api.GET("/resources", handleListResources)
		api.PUT("/resources/:id", handleUpdateResource)
		api.GET("/resources/:id/history", handleResourceHistory)
		api.GET("/export", handleExportResources)
		api.POST("/import", handleImportResources)
	}
}

func addPricingContext(calc *pricing.Calculator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("pricing", calc)
		c.Next()
	}
}

func addCatalogContext(client *catalog.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("catalog", client)
		c.Next()
	}
}

func addEmailServiceContext(emailService *email.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("email", emailService)
		c.Next()
	}
}
