package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationNewFollower    NotificationType = "new_follower"
	NotificationNewReaction    NotificationType = "new_reaction"
	NotificationNewComment     NotificationType = "new_comment"
	NotificationReportCreated  NotificationType = "report_created"
	NotificationReportReviewed NotificationType = "report_reviewed"
	NotificationContentRemoved NotificationType = "content_removed"
)

// Reference types used by notifications and audit entries.
const (
	RefPost    = "post"
	RefComment = "comment"
	RefReport  = "report"
	RefAccount = "account"
)

type Notification struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_account_read,priority:1" json:"account_id"`
	ActorID       *uuid.UUID       `gorm:"type:uuid" json:"actor_id,omitempty"`
	Type          NotificationType `gorm:"size:50;not null" json:"type"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Body          string           `gorm:"type:text" json:"body"`
	ReferenceID   *uuid.UUID       `gorm:"type:uuid" json:"reference_id,omitempty"`
	ReferenceType *string          `gorm:"size:50" json:"reference_type,omitempty"`
	IsRead        bool             `gorm:"not null;default:false;index:idx_notifications_account_read,priority:2" json:"is_read"`
	CreatedAt     time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}
