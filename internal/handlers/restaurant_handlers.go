package handlers

import (
	"errors"
	"net/http"

	"restaurant_analytics/internal/middleware"
	"restaurant_analytics/internal/services"
	"restaurant_analytics/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RestaurantHandler lists and describes the restaurants a user can see.
type RestaurantHandler struct {
	restaurantService services.RestaurantService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(rs services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: rs}
}

// GetRestaurants returns the restaurants granted to the authenticated user.
func (h *RestaurantHandler) GetRestaurants(c *gin.Context) {
	email := c.GetString(middleware.ContextEmailKey)
	restaurants, err := h.restaurantService.ListForUser(c.Request.Context(), email)
	if err != nil {
		utils.LogError(err, "GetRestaurants: Error from restaurantService.ListForUser")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch restaurants.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": restaurants, "total": len(restaurants)})
}

// GetRestaurantByID returns one restaurant. Access is checked by middleware.
func (h *RestaurantHandler) GetRestaurantByID(c *gin.Context) {
	restaurantID, err := utils.StrToInt64(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid restaurant ID format.", err.Error()))
		return
	}

	restaurant, err := h.restaurantService.GetRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, services.ErrRestaurantNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Restaurant not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetRestaurantByID: Error from restaurantService.GetRestaurant")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch restaurant.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, restaurant)
}
