// Package http assembles the gin engine.
package http

import (
	"github.com/gin-gonic/gin"

	"marketplace/internal/infrastructure/auth"
	"marketplace/internal/interfaces/http/middleware"
	"marketplace/internal/interfaces/http/routes"
	"marketplace/internal/shared/config"
	"marketplace/internal/shared/logger"
)

// NewRouter builds the engine with recovery, request logging and all
// application routes.
func NewRouter(cfg *config.ServerConfig, h routes.Handlers, jwtService *auth.JWTService, log logger.Interface) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.Register(router, h, jwtService)
	return router
}
