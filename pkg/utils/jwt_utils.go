package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecretKey is used to verify JWT tokens issued by the identity provider.
// It is replaced at start-up from JWT_SECRET via SetJWTSecret.
var jwtSecretKey = []byte("dev-only-restaurant-analytics-secret")

const (
	AccessTokenTTL = 12 * time.Hour
	tokenIssuer    = "restaurant-analytics"
)

var ErrEmptyJWTSecret = errors.New("jwt secret must not be empty")

// Claims defines the JWT claims structure
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SetJWTSecret replaces the signing key.
func SetJWTSecret(secret string) error {
	if secret == "" {
		return ErrEmptyJWTSecret
	}
	jwtSecretKey = []byte(secret)
	return nil
}

// GenerateAccessToken creates a signed token for email. Used by the dev token tool and tests;
// production tokens come from the identity provider sharing the same secret.
func GenerateAccessToken(email, role string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = AccessTokenTTL
	}
	now := time.Now()
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("token has no email claim")
	}

	return claims, nil
}
