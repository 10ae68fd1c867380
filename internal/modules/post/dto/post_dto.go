package dto

import (
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	commonDto "github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Content    string            `form:"content" json:"content" binding:"required,max=5000"`
	Visibility entity.Visibility `form:"visibility" json:"visibility" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

type UpdatePostRequest struct {
	Content    *string            `json:"content" binding:"omitempty,min=1,max=5000"`
	Visibility *entity.Visibility `json:"visibility" binding:"omitempty,oneof=PUBLIC PRIVATE"`
}

type PostResponse struct {
	ID            uuid.UUID                `json:"id"`
	Author        commonDto.AccountSummary `json:"author"`
	Content       string                   `json:"content"`
	MediaURL      *string                  `json:"media_url,omitempty"`
	Visibility    entity.Visibility        `json:"visibility"`
	CommentCount  int64                    `json:"comment_count"`
	ReactionCount int64                    `json:"reaction_count"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}
