package transport

import (
	"time"

	"github.com/google/uuid"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type SignupRequest struct {
	Email    string `json:"email"     validate:"required,email,max=255"`
	Username string `json:"username"  validate:"required,min=1,max=255"`
	Password string `json:"password"  validate:"required,min=1,max=72"`
	FullName string `json:"full_name" validate:"max=255"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type CheckAccessResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Roles  []string  `json:"roles"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PatchUserRequest struct {
	Email    *string `json:"email"     validate:"omitempty,email,max=255"`
	Username *string `json:"username"  validate:"omitempty,min=1,max=255"`
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	Password *string `json:"password"  validate:"omitempty,min=1,max=72"`
}

type RoleRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type RoleRef struct {
	ID uuid.UUID `json:"id" validate:"required"`
}

type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	UserAgent string    `json:"user_agent"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}
