package router

import (
	"fmt"
	"net/http"

	"restaurant_analytics/internal/middleware"
	"restaurant_analytics/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// EngineConfig holds the HTTP settings applied before any route is registered.
type EngineConfig struct {
	AllowedOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts none, so ClientIP is the socket address.
	TrustedProxies []string
}

// NewEngine builds the gin engine with global middleware and the /ping health check.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("setting trusted proxies: %w", err)
	}

	engine.Use(gin.Recovery(), utils.GinLogger(), middleware.PrometheusMiddleware())

	config := cors.DefaultConfig()
	config.AllowOrigins = cfg.AllowedOrigins
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return engine, nil
}
