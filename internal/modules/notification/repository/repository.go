package repository

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	// Create inserts under a savepoint so a failed insert leaves the
	// surrounding transaction usable.
	Create(ctx context.Context, notification *entity.Notification) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) ([]entity.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, accountID uuid.UUID) (bool, error)
	MarkAllAsRead(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error)
	DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	err := database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(notification).Error
	})
	return database.TranslateError(err)
}

func (r *notificationRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) ([]entity.Notification, int64, error) {
	page = page.Normalize()
	query := database.Conn(ctx, r.db).Model(&entity.Notification{}).Where("account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err)
	}

	var notifications []entity.Notification
	err := query.Order("created_at desc").Order("id desc").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, database.TranslateError(err)
	}
	return notifications, total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, accountID uuid.UUID) (bool, error) {
	var count int64
	db := database.Conn(ctx, r.db)
	if err := db.Model(&entity.Notification{}).Where("id = ? AND account_id = ?", id, accountID).Count(&count).Error; err != nil {
		return false, database.TranslateError(err)
	}
	if count == 0 {
		return false, nil
	}

	err := db.Model(&entity.Notification{}).Where("id = ?", id).Update("is_read", true).Error
	return true, database.TranslateError(err)
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) (int64, error) {
	result := database.Conn(ctx, r.db).Model(&entity.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Update("is_read", true)
	return result.RowsAffected, database.TranslateError(result.Error)
}

func (r *notificationRepository) CountUnread(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Count(&count).Error
	return count, database.TranslateError(err)
}

func (r *notificationRepository) DeleteByAccountID(ctx context.Context, accountID uuid.UUID) error {
	err := database.Conn(ctx, r.db).Where("account_id = ?", accountID).Delete(&entity.Notification{}).Error
	return database.TranslateError(err)
}
