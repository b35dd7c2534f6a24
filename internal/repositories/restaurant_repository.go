package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"restaurant_analytics/internal/models"
)

// RestaurantRepository defines the restaurant and access-policy lookups.
type RestaurantRepository interface {
	GetRestaurantByID(ctx context.Context, restaurantID int64) (*models.Restaurant, error)
	ListRestaurantsForEmail(ctx context.Context, email string) ([]models.Restaurant, error)
	HasAccess(ctx context.Context, email string, restaurantID int64) (bool, error)
}

type restaurantRepository struct {
	db SQLExecutor
}

// NewRestaurantRepository creates a new instance of RestaurantRepository.
func NewRestaurantRepository(db SQLExecutor) RestaurantRepository {
	return &restaurantRepository{db: db}
}

func scanRestaurant(s scanner) (models.Restaurant, error) {
	var r models.Restaurant
	err := s.Scan(&r.ID, &r.Name, &r.CreatedAt)
	return r, err
}

func (r *restaurantRepository) GetRestaurantByID(ctx context.Context, restaurantID int64) (*models.Restaurant, error) {
	query := `SELECT id, name, created_at FROM restaurants WHERE id = $1`
	restaurant, err := scanRestaurant(r.db.QueryRowContext(ctx, query, restaurantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting restaurant by ID %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return &restaurant, nil
}

// ListRestaurantsForEmail returns the restaurants granted to email. A grant with a
// NULL restaurant_id lists every restaurant.
func (r *restaurantRepository) ListRestaurantsForEmail(ctx context.Context, email string) ([]models.Restaurant, error) {
	query := `
		SELECT r.id, r.name, r.created_at
		FROM restaurants r
		WHERE EXISTS (
			SELECT 1 FROM restaurant_access ra
			WHERE LOWER(ra.email) = $1
				AND (ra.restaurant_id IS NULL OR ra.restaurant_id = r.id)
		)
		ORDER BY r.name ASC`

	rows, err := r.db.QueryContext(ctx, query, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%w: listing restaurants: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning restaurant: %v", ErrDatabaseError, err)
		}
		restaurants = append(restaurants, restaurant)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating restaurant rows: %v", ErrDatabaseError, err)
	}
	return restaurants, nil
}

func (r *restaurantRepository) HasAccess(ctx context.Context, email string, restaurantID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM restaurant_access
			WHERE LOWER(email) = $1 AND (restaurant_id IS NULL OR restaurant_id = $2)
		)`
	var allowed bool
	if err := r.db.QueryRowContext(ctx, query, normalizeEmail(email), restaurantID).Scan(&allowed); err != nil {
		return false, fmt.Errorf("%w: checking access for restaurant %d: %v", ErrDatabaseError, restaurantID, err)
	}
	return allowed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
