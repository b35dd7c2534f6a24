package services

import (
	"context"
	"errors"
	"fmt"

	"restaurant_analytics/internal/models"
	"restaurant_analytics/internal/repositories"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrAccessDenied       = errors.New("access to restaurant denied")
)

// RestaurantService resolves which restaurants a user may see.
type RestaurantService interface {
	ListForUser(ctx context.Context, email string) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, restaurantID int64) (*models.Restaurant, error)
	Authorize(ctx context.Context, email string, restaurantID int64) error
}

type restaurantService struct {
	repo repositories.RestaurantRepository
}

// NewRestaurantService creates a new instance of RestaurantService.
func NewRestaurantService(repo repositories.RestaurantRepository) RestaurantService {
	return &restaurantService{repo: repo}
}

func (s *restaurantService) ListForUser(ctx context.Context, email string) ([]models.Restaurant, error) {
	restaurants, err := s.repo.ListRestaurantsForEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("listing restaurants for user: %w", err)
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}
	return restaurants, nil
}

func (s *restaurantService) GetRestaurant(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	restaurant, err := s.repo.GetRestaurantByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRestaurantNotFound
		}
		return nil, fmt.Errorf("getting restaurant %d: %w", restaurantID, err)
	}
	return restaurant, nil
}

// Authorize returns ErrAccessDenied unless email holds a grant for the restaurant.
func (s *restaurantService) Authorize(ctx context.Context, email string, restaurantID int64) error {
	if email == "" {
		return ErrAccessDenied
	}
	allowed, err := s.repo.HasAccess(ctx, email, restaurantID)
	if err != nil {
		return fmt.Errorf("checking restaurant access: %w", err)
	}
	if !allowed {
		return ErrAccessDenied
	}
	return nil
}
