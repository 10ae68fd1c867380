package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportResolved ReportStatus = "RESOLVED"
	ReportRejected ReportStatus = "REJECTED"
)

// IsDecision reports whether s is a terminal state a review may move to.
func (s ReportStatus) IsDecision() bool {
	return s == ReportResolved || s == ReportRejected
}

// Report has no foreign key to posts: it outlives the post it got removed.
type Report struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID   uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reports_reporter_post,priority:1" json:"reporter_id"`
	PostID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reports_reporter_post,priority:2;index" json:"post_id"`
	PostAuthorID uuid.UUID    `gorm:"type:uuid;not null;index" json:"post_author_id"`
	Reason       string       `gorm:"size:500" json:"reason"`
	Status       ReportStatus `gorm:"size:10;not null;default:PENDING;index" json:"status"`
	ReviewedBy   *uuid.UUID   `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time   `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	if r.Status == "" {
		r.Status = ReportPending
	}
	return
}
