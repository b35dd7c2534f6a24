package handlers

import (
	"context"
	"net/http"
	"testing"

	"restaurant_analytics/internal/middleware"
	"restaurant_analytics/internal/models"
	"restaurant_analytics/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubRestaurantService struct {
	listed string
	err    error
}

func (s *stubRestaurantService) ListForUser(ctx context.Context, email string) ([]models.Restaurant, error) {
	s.listed = email
	if s.err != nil {
		return nil, s.err
	}
	return []models.Restaurant{{ID: 1, Name: "Cantina"}}, nil
}

func (s *stubRestaurantService) GetRestaurant(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	if restaurantID != 1 {
		return nil, services.ErrRestaurantNotFound
	}
	return &models.Restaurant{ID: 1, Name: "Cantina"}, nil
}

func (s *stubRestaurantService) Authorize(ctx context.Context, email string, restaurantID int64) error {
	return nil
}

func newRestaurantEngine(svc services.RestaurantService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRestaurantHandler(svc)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.ContextEmailKey, "owner@example.com")
		c.Next()
	})
	engine.GET("/restaurants", h.GetRestaurants)
	engine.GET("/restaurants/:id", h.GetRestaurantByID)
	return engine
}

func TestGetRestaurants(t *testing.T) {
	svc := &stubRestaurantService{}
	w := serve(newRestaurantEngine(svc), "/restaurants")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "owner@example.com", svc.listed)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = serve(newRestaurantEngine(&stubRestaurantService{err: assert.AnError}), "/restaurants")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetRestaurantByID(t *testing.T) {
	engine := newRestaurantEngine(&stubRestaurantService{})

	assert.Equal(t, http.StatusOK, serve(engine, "/restaurants/1").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, "/restaurants/2").Code)
	assert.Equal(t, http.StatusBadRequest, serve(engine, "/restaurants/x").Code)
}
