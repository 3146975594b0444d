package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colonial-ledger-parser/internal/api_gateway/handler"
	"github.com/colonial-ledger-parser/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	batchHandler *handler.BatchHandler,
	entryHandler *handler.EntryHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Batch operations
		batches := v1.Group("/batches")
		{
			batches.POST("", batchHandler.Create)
			batches.POST("/upload", batchHandler.Upload)
			batches.GET("/:id", batchHandler.GetByID)
			batches.GET("/:id/entries", batchHandler.GetEntries)
		}

		// Parsed entry operations
		entries := v1.Group("/entries")
		{
			entries.GET("/:id", entryHandler.GetByID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
