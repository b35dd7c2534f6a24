package router

import (
	"database/sql"
	"time"

	"restaurant_analytics/internal/handlers"
	"restaurant_analytics/internal/middleware"
	"restaurant_analytics/internal/repositories"
	"restaurant_analytics/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries the optional pieces of the API wiring.
type Options struct {
	Cache        services.MetricsCache // nil disables caching
	CacheTTL     time.Duration
	RateLimiter  *middleware.RateLimiter // nil disables rate limiting
	QueryTimeout time.Duration
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, opts Options) {
	// Repositories
	restaurantRepo := repositories.NewRestaurantRepository(db)
	metricsRepo := repositories.NewMetricsRepository(db)

	// Services
	restaurantService := services.NewRestaurantService(restaurantRepo)
	metricsService := services.NewMetricsService(metricsRepo, opts.Cache, opts.CacheTTL)

	// Handlers
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	metricsHandler := handlers.NewMetricsHandler(metricsService)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := engine.Group("/api/v1")
	if opts.RateLimiter != nil {
		apiV1.Use(opts.RateLimiter.Middleware())
	}

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(), middleware.QueryTimeoutMiddleware(opts.QueryTimeout))
	{
		SetupRestaurantRoutes(authenticated, restaurantHandler, restaurantService)
		SetupMetricRoutes(authenticated, metricsHandler, restaurantService)
	}
}
