package auth

import "github.com/cityfix/cityfix-api/internal/domain/user"

// RegisterRequest creates a new citizen account
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest authenticates by email and password
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries the access token and the authenticated user
type TokenResponse struct {
	AccessToken string     `json:"access_token"`
	User        *user.User `json:"user"`
}
