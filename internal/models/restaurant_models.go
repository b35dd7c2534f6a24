package models

import "time"

// Restaurant is a tenant whose sales the dashboard reports on.
type Restaurant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessGrant is one row of the restaurant_access policy table.
// A nil RestaurantID grants access to every restaurant.
type AccessGrant struct {
	Email        string `json:"email"`
	RestaurantID *int64 `json:"restaurant_id,omitempty"`
	Role         string `json:"role"`
}
