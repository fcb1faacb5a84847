package model

import "time"

// User represents a registered account in the database.
type User struct {
	ID             int64
	Email          string
	HashedPassword string
	CreatedDate    time.Time
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// LoginRequest carries the form-encoded credentials of POST /auth/token.
// The email travels in the OAuth2-style "username" field.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
	TokenType string `json:"token_type"`
}

// UserResponse represents user data safe for API responses (no sensitive fields).
type UserResponse struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	CreatedDate time.Time `json:"created_date"`
}

// ToResponse strips the password hash.
func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		CreatedDate: u.CreatedDate,
	}
}
