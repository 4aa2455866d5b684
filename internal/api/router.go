// Package api exposes the coordinator over HTTP.
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/api/middleware"
	"github.com/rfpforge/rfpforge/internal/config"
	"github.com/rfpforge/rfpforge/internal/coordinator"
	"github.com/rfpforge/rfpforge/internal/storage"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
	Environment  config.Environment
	UploadDir    string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	coord *coordinator.Coordinator,
	facade *storage.Facade,
	logger *zap.Logger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":      "ok",
			"environment": string(cfg.Environment),
		})
	})

	h := NewHandler(coord, facade, logger, cfg.UploadDir)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.APIKey))
	h.RegisterRoutes(v1)

	return r
}
