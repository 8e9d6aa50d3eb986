package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"ytrelay/internal/api/middleware"
	"ytrelay/internal/config"
	"ytrelay/internal/relay"
)

// RegisterRoutes wires the websocket gateway, the workflow proxy, and the
// static UI onto the router.
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	gateway *relay.Gateway,
	logger *slog.Logger,
) {
	jobsHandler := NewJobsHandler(cfg.Workflow, logger)

	router.GET("/ws", gateway.HandleConnection)

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.CORS(cfg.Relay.Origins()))
	{
		apiGroup.POST("/jobs", jobsHandler.CreateJob)
		apiGroup.GET("/jobs/:videoId", jobsHandler.GetJobResult)
	}

	router.StaticFile("/", "./web/index.html")
}
