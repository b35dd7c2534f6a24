package middleware

import (
	"errors"
	"net/http"
	"strings"

	"restaurant_analytics/internal/services"
	"restaurant_analytics/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	ContextEmailKey = "userEmail"
	ContextRoleKey  = "userRole"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		c.Set(ContextEmailKey, claims.Email)
		c.Set(ContextRoleKey, claims.Role)

		c.Next()
	}
}

// RestaurantAccessMiddleware rejects requests for a restaurant the caller holds no grant for.
// It must run after AuthMiddleware on routes with an :id parameter.
func RestaurantAccessMiddleware(rs services.RestaurantService) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID, err := utils.StrToInt64(c.Param("id"))
		if err != nil || restaurantID <= 0 {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid restaurant ID format.", c.Param("id")))
			return
		}

		email := c.GetString(ContextEmailKey)
		if err := rs.Authorize(c.Request.Context(), email, restaurantID); err != nil {
			if errors.Is(err, services.ErrAccessDenied) {
				utils.LogWarn("Restaurant access denied", map[string]interface{}{
					"email":         email,
					"role":          c.GetString(ContextRoleKey),
					"restaurant_id": restaurantID,
				})
				utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "You do not have access to this restaurant.", ""))
				return
			}
			utils.LogError(err, "RestaurantAccessMiddleware: access check failed")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check restaurant access.", "Internal error"))
			return
		}

		c.Next()
	}
}
