package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(handlers *Handlers) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware())

	// API routes
	api := router.Group("/api")
	{
		templates := api.Group("/templates")
		{
			templates.POST("", handlers.CreateTemplateHandler)
			templates.POST("/validate", handlers.ValidateTemplateHandler)
			templates.GET("", handlers.ListTemplatesHandler)
			templates.GET("/:id", handlers.GetTemplateHandler)
			templates.PUT("/:id", handlers.UpdateTemplateHandler)
			templates.DELETE("/:id", handlers.DeleteTemplateHandler)
		}

		scheduled := api.Group("/scheduled-reports")
		{
			scheduled.POST("", handlers.CreateScheduledReportHandler)
			scheduled.GET("", handlers.ListScheduledReportsHandler)
			scheduled.GET("/:id", handlers.GetScheduledReportHandler)
			scheduled.PUT("/:id", handlers.UpdateScheduledReportHandler)
			scheduled.DELETE("/:id", handlers.DeleteScheduledReportHandler)
			scheduled.POST("/:id/toggle", handlers.ToggleScheduledReportHandler)
			scheduled.POST("/:id/run", handlers.RunScheduledReportHandler)
		}

		reports := api.Group("/reports")
		{
			reports.POST("/generate", handlers.GenerateReportHandler)
		}

		scheduler := api.Group("/scheduler")
		{
			scheduler.POST("/start", handlers.StartSchedulerHandler)
			scheduler.POST("/stop", handlers.StopSchedulerHandler)
			scheduler.GET("/status", handlers.SchedulerStatusHandler)
		}

		api.GET("/artifacts/download/:name", handlers.DownloadArtifactHandler)
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
