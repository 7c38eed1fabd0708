package api

import (
	"eastlens/server/config"
	"eastlens/server/internal/database"
	"eastlens/server/internal/queue"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all API routes and returns the handler so the caller
// can hook it into the scheduler.
func SetupRoutes(router *gin.Engine, db *database.Database, cfg *config.Config, q *queue.RecordQueue) *Handler {
	handler := NewHandler(db, cfg, q, nil)

	api := router.Group("/api")
	{
		api.GET("/records", handler.GetRecords)
		api.GET("/report", handler.GetReport)
		api.GET("/report/export", handler.ExportReport)
		api.GET("/stats", handler.GetStats)
		api.GET("/postcodes/:postcode", handler.GetPostcodeStats)
		api.GET("/suggestions", handler.GetSuggestions)
		api.POST("/chat", handler.Chat)
		api.POST("/import", handler.ImportData)
	}

	SetupDistrictRoutes(router, db)

	return handler
}
