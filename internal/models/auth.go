package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest carries the driver credentials.
type LoginRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
	PIN      string `json:"pin" validate:"required"`
}

// LoginResponse returns the issued access token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	DriverID    string    `json:"driver_id"`
	DriverName  string    `json:"driver_name"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	DriverID string `json:"driver_id"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}
