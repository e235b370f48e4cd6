package identity

import (
	"time"

	"github.com/erp/invoicing/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterRequest is the public signup payload
type RegisterRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Email        string `json:"email" binding:"required,email,max=200"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// LoginRequest carries user credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke along with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID       uuid.UUID
	AccessJTI    string
	AccessTTL    time.Duration
	RefreshToken string
}

// UpdateUserRequest is a partial user update. Omitted fields are left untouched.
type UpdateUserRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email        *string `json:"email" binding:"omitempty,email,max=200"`
	IsSuperAdmin *bool   `json:"is_super_admin"`
}

// UserResponse is the public representation of a user
type UserResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	IsSuperAdmin bool       `json:"is_super_admin"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until the access token expires
}

// ToUserResponse converts a domain user
func ToUserResponse(u *identity.User) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		IsSuperAdmin: u.IsSuperAdmin,
		CreatedAt:    u.CreatedAt,
	}
	if u.UpdatedAt.After(u.CreatedAt) {
		updated := u.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

// ToUserResponses converts a slice of domain users
func ToUserResponses(users []*identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out
}
