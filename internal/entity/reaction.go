package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReactionKind string

const (
	ReactionLike  ReactionKind = "LIKE"
	ReactionLove  ReactionKind = "LOVE"
	ReactionHaha  ReactionKind = "HAHA"
	ReactionWow   ReactionKind = "WOW"
	ReactionSad   ReactionKind = "SAD"
	ReactionAngry ReactionKind = "ANGRY"
)

var reactionKinds = map[ReactionKind]struct{}{
	ReactionLike:  {},
	ReactionLove:  {},
	ReactionHaha:  {},
	ReactionWow:   {},
	ReactionSad:   {},
	ReactionAngry: {},
}

func (k ReactionKind) Valid() bool {
	_, ok := reactionKinds[k]
	return ok
}

// Reaction is unique per (AccountID, PostID).
type Reaction struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_account_post,priority:1" json:"account_id"`
	PostID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_account_post,priority:2;index" json:"post_id"`
	Kind      ReactionKind `gorm:"size:10;not null" json:"kind"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
