package router

import (
	"restaurant_analytics/internal/handlers"
	"restaurant_analytics/internal/middleware"
	"restaurant_analytics/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRestaurantRoutes sets up the restaurant routes.
func SetupRestaurantRoutes(authenticatedGroup *gin.RouterGroup, restaurantHandler *handlers.RestaurantHandler, rs services.RestaurantService) {
	restaurantRoutes := authenticatedGroup.Group("/restaurants")
	{
		restaurantRoutes.GET("", restaurantHandler.GetRestaurants)
		restaurantRoutes.GET("/:id", middleware.RestaurantAccessMiddleware(rs), restaurantHandler.GetRestaurantByID)
	}
}

// SetupMetricRoutes sets up the dashboard metric card routes.
func SetupMetricRoutes(authenticatedGroup *gin.RouterGroup, metricsHandler *handlers.MetricsHandler, rs services.RestaurantService) {
	metricRoutes := authenticatedGroup.Group("/restaurants/:id/metrics")
	metricRoutes.Use(middleware.RestaurantAccessMiddleware(rs))
	{
		metricRoutes.GET("/sales-count", metricsHandler.GetSalesCount)
		metricRoutes.GET("/revenue", metricsHandler.GetRevenue)
		metricRoutes.GET("/ticket-average", metricsHandler.GetTicketAverage)
		metricRoutes.GET("/sales-by-shift", metricsHandler.GetSalesByShift)
		metricRoutes.GET("/sales-by-channel", metricsHandler.GetSalesByChannel)
		metricRoutes.GET("/growth-trend", metricsHandler.GetGrowthTrend)
		metricRoutes.GET("/deviation", metricsHandler.GetDeviation)
		metricRoutes.GET("/top-product", metricsHandler.GetTopProduct)
		metricRoutes.GET("/most-removed-product", metricsHandler.GetMostRemovedProduct)
		metricRoutes.GET("/delivery-time", metricsHandler.GetDeliveryTime)
		metricRoutes.GET("/seasonality", metricsHandler.GetSeasonality)
	}
}
