package repository

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FollowRepository interface {
	Create(ctx context.Context, follow *entity.Follow) error
	// Delete returns false when no edge existed.
	Delete(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	Exists(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, accountID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, accountID uuid.UUID) (int64, error)
	ListFollowers(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) ([]entity.Account, int64, error)
	ListFollowing(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) ([]entity.Account, int64, error)
	DeleteAllFor(ctx context.Context, accountID uuid.UUID) error
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, follow *entity.Follow) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(follow).Error)
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	result := database.Conn(ctx, r.db).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&entity.Follow{})
	if result.Error != nil {
		return false, database.TranslateError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	if err != nil {
		return false, database.TranslateError(err)
	}
	return count > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Follow{}).Where("followed_id = ?", accountID).Count(&count).Error
	return count, database.TranslateError(err)
}

func (r *followRepository) CountFollowing(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Follow{}).Where("follower_id = ?", accountID).Count(&count).Error
	return count, database.TranslateError(err)
}

func (r *followRepository) ListFollowers(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) ([]entity.Account, int64, error) {
	return r.listAccounts(ctx, "follows.follower_id", "follows.followed_id", accountID, page)
}

func (r *followRepository) ListFollowing(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) ([]entity.Account, int64, error) {
	return r.listAccounts(ctx, "follows.followed_id", "follows.follower_id", accountID, page)
}

// listAccounts joins the accounts on the far side of the edges whose anchor
// column equals accountID, newest edge first.
func (r *followRepository) listAccounts(ctx context.Context, joinColumn, anchorColumn string, accountID uuid.UUID, page dto.PageRequest) ([]entity.Account, int64, error) {
	page = page.Normalize()
	db := database.Conn(ctx, r.db)

	var total int64
	if err := db.Model(&entity.Follow{}).Where(anchorColumn+" = ?", accountID).Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err)
	}

	var accounts []entity.Account
	err := db.Model(&entity.Account{}).
		Select("accounts.*").
		Joins("JOIN follows ON accounts.id = "+joinColumn).
		Where(anchorColumn+" = ?", accountID).
		Order("follows.created_at DESC").
		Order("accounts.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, database.TranslateError(err)
	}
	return accounts, total, nil
}

func (r *followRepository) DeleteAllFor(ctx context.Context, accountID uuid.UUID) error {
	err := database.Conn(ctx, r.db).
		Where("follower_id = ? OR followed_id = ?", accountID, accountID).
		Delete(&entity.Follow{}).Error
	return database.TranslateError(err)
}
