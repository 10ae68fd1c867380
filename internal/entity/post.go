package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_posts_author_created,priority:1" json:"author_id"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	MediaURL   *string    `gorm:"type:text" json:"media_url,omitempty"`
	Visibility Visibility `gorm:"size:10;not null;default:PUBLIC;index" json:"visibility"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index:idx_posts_author_created,priority:2;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	if p.Visibility == "" {
		p.Visibility = VisibilityPublic
	}
	return
}
