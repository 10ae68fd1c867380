package dto

import (
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeRemoved Outcome = "removed"
)

type ReactionToggleRequest struct {
	Kind entity.ReactionKind `json:"kind" binding:"required"`
}

type ToggleResponse struct {
	PostID   uuid.UUID            `json:"post_id"`
	Outcome  Outcome              `json:"outcome"`
	Kind     *entity.ReactionKind `json:"kind,omitempty"`
	Previous *entity.ReactionKind `json:"previous,omitempty"`
}

type SummaryResponse struct {
	PostID      uuid.UUID                     `json:"post_id"`
	Counts      map[entity.ReactionKind]int64 `json:"counts"`
	Total       int64                         `json:"total"`
	UserReacted *entity.ReactionKind          `json:"user_reacted,omitempty"`
}
