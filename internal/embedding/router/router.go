// Package router registers the embedding service routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-embed/internal/embedding/handler"
	"github.com/kart-io/sentinel-embed/pkg/infra/middleware"
)

// Register registers the routes on engine. Every route except /healthz and
// /metrics goes through auth. /metrics is only served when the service
// records metrics.
func Register(engine *gin.Engine, h *handler.Handler, auth *middleware.TokenAuth) {
	engine.GET("/healthz", h.Health)
	if m := h.Metrics(); m != nil {
		engine.GET("/metrics", gin.WrapH(m.Handler()))
	}

	protected := engine.Group("")
	if auth != nil {
		protected.Use(auth.Middleware())
	}

	v1 := protected.Group("/v1")
	{
		v1.POST("/embeddings", h.Embeddings)
		v1.POST("/search", h.Search)
		v1.POST("/chunk", h.Chunk)
		v1.POST("/optimize", h.Optimize)
		v1.POST("/collection", h.Collection)
		v1.GET("/models", h.Models)
	}

	protected.POST("/embed", h.LegacyEmbed)

	logger.Infow("HTTP routes registered", "auth", auth != nil && auth.Enabled())
}
