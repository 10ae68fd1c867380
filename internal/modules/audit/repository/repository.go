package repository

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditFilter struct {
	ActionType        entity.AuditAction
	AffectedAccountID *uuid.UUID
}

// AuditRepository is append-only: entries are never updated or deleted.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	List(ctx context.Context, filter AuditFilter, page dto.PageRequest) ([]entity.AuditEntry, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(entry).Error)
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter, page dto.PageRequest) ([]entity.AuditEntry, int64, error) {
	page = page.Normalize()
	query := database.Conn(ctx, r.db).Model(&entity.AuditEntry{})
	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.AffectedAccountID != nil {
		query = query.Where("affected_account_id = ?", *filter.AffectedAccountID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err)
	}

	var entries []entity.AuditEntry
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&entries).Error
	if err != nil {
		return nil, 0, database.TranslateError(err)
	}
	return entries, total, nil
}
