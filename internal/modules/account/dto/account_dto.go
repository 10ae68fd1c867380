package dto

import (
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50,alphanum"`
	Email       string `json:"email" binding:"required,email,max=100"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Account     AccountResponse `json:"account"`
}

// AccountResponse is the full view of an account, shown to its owner and
// to administrators.
type AccountResponse struct {
	ID          uuid.UUID         `json:"id"`
	Username    string            `json:"username"`
	Email       string            `json:"email"`
	DisplayName string            `json:"display_name"`
	Bio         *string           `json:"bio,omitempty"`
	AvatarURL   *string           `json:"avatar_url,omitempty"`
	Role        entity.Role       `json:"role"`
	Visibility  entity.Visibility `json:"visibility"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
}

func ToAccountResponse(a *entity.Account) AccountResponse {
	return AccountResponse{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Bio:         a.Bio,
		AvatarURL:   a.AvatarURL,
		Role:        a.Role,
		Visibility:  a.Visibility,
		Active:      a.Active,
		CreatedAt:   a.CreatedAt,
	}
}

type ProfileResponse struct {
	ID             uuid.UUID         `json:"id"`
	Username       string            `json:"username"`
	DisplayName    string            `json:"display_name"`
	Bio            *string           `json:"bio,omitempty"`
	AvatarURL      *string           `json:"avatar_url,omitempty"`
	Role           entity.Role       `json:"role"`
	Visibility     entity.Visibility `json:"visibility"`
	FollowersCount int64             `json:"followers_count"`
	FollowingCount int64             `json:"following_count"`
	IsFollowing    bool              `json:"is_following"`
	CreatedAt      time.Time         `json:"created_at"`
}

type UpdateProfileRequest struct {
	DisplayName *string            `form:"display_name" json:"display_name" binding:"omitempty,max=100"`
	Bio         *string            `form:"bio" json:"bio" binding:"omitempty,max=1000"`
	Visibility  *entity.Visibility `form:"visibility" json:"visibility" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

type ListAccountsQuery struct {
	Role   entity.Role `form:"role" binding:"omitempty,oneof=USER ADMIN"`
	Active *bool       `form:"active"`
	Query  string      `form:"q"`
}

type SetRoleRequest struct {
	Role entity.Role `json:"role" binding:"required,oneof=USER ADMIN"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}
