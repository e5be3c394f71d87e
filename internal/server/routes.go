// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rmedina/placepix/internal/config"
	"github.com/rmedina/placepix/internal/handler"
	"github.com/rmedina/placepix/internal/middleware"
	"github.com/rmedina/placepix/internal/provider"
	"github.com/rmedina/placepix/internal/service"
	"github.com/rmedina/placepix/internal/storage"
)

// Deps bundles the wired services the routes need. Dependencies are passed
// explicitly; each handler gets exactly what it uses.
type Deps struct {
	Registry provider.Resolver
	Records  *storage.RecordStore
	History  storage.HistoryRepository
	Workflow *service.Workflow
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	searchHandler := handler.NewSearchHandler(deps.Registry, logger)
	recordsHandler := handler.NewRecordsHandler(deps.Records, deps.History, logger)
	sessionHandler := handler.NewSessionHandler(deps.Workflow, logger)

	// Public endpoint (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	api.Use(middleware.OperatorAuth(cfg.Auth.APIKeys))
	api.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		api.GET("/search", searchHandler.Search)
		api.GET("/records", recordsHandler.List)
		api.GET("/history", recordsHandler.History)

		api.POST("/sessions", sessionHandler.Start)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.POST("/sessions/:id/provider", sessionHandler.SetProvider)
		api.POST("/sessions/:id/filter", sessionHandler.SetFilter)
		api.POST("/sessions/:id/more", sessionHandler.More)
		api.POST("/sessions/:id/pick", sessionHandler.Pick)
		api.POST("/sessions/:id/skip", sessionHandler.Skip)
	}
}
