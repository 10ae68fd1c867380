package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditReportResolved  AuditAction = "report_resolved"
	AuditReportRejected  AuditAction = "report_rejected"
	AuditPostDeleted     AuditAction = "post_deleted"
	AuditAccountDeleted  AuditAction = "account_deleted"
	AuditAccountRole     AuditAction = "account_role_changed"
	AuditAccountActivity AuditAction = "account_active_changed"
)

// AuditEntry is append-only.
type AuditEntry struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID            uuid.UUID   `gorm:"type:uuid;not null;index" json:"admin_id"`
	ActionType         AuditAction `gorm:"size:50;not null;index" json:"action_type"`
	Title              string      `gorm:"size:255;not null" json:"title"`
	Description        string      `gorm:"type:text" json:"description"`
	AffectedEntityID   uuid.UUID   `gorm:"type:uuid;not null" json:"affected_entity_id"`
	AffectedEntityType string      `gorm:"size:50;not null" json:"affected_entity_type"`
	AffectedAccountID  *uuid.UUID  `gorm:"type:uuid;index" json:"affected_account_id,omitempty"`
	CreatedAt          time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}

func (a *AuditEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID, err = uuid.NewV7()
	}
	return
}
