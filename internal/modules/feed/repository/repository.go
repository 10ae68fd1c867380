package repository

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeedRepository interface {
	// Feed returns every post by viewerID plus the PUBLIC posts of the
	// accounts viewerID follows.
	Feed(ctx context.Context, viewerID uuid.UUID, page dto.PageRequest) ([]entity.Post, int64, error)
	// PublicListing returns PUBLIC posts of PUBLIC, active accounts, excluding viewerID.
	PublicListing(ctx context.Context, viewerID uuid.UUID, page dto.PageRequest) ([]entity.Post, int64, error)
	// AuthorPosts returns the posts of authorID, restricted to PUBLIC ones
	// unless includePrivate is set.
	AuthorPosts(ctx context.Context, authorID uuid.UUID, includePrivate bool, page dto.PageRequest) ([]entity.Post, int64, error)
}

type feedRepository struct {
	db *gorm.DB
}

func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) Feed(ctx context.Context, viewerID uuid.UUID, page dto.PageRequest) ([]entity.Post, int64, error) {
	db := database.Conn(ctx, r.db)
	followed := db.Model(&entity.Follow{}).Select("followed_id").Where("follower_id = ?", viewerID)

	query := db.Model(&entity.Post{}).
		Where("author_id = ? OR (visibility = ? AND author_id IN (?))", viewerID, entity.VisibilityPublic, followed)
	return r.paginate(query, page)
}

func (r *feedRepository) PublicListing(ctx context.Context, viewerID uuid.UUID, page dto.PageRequest) ([]entity.Post, int64, error) {
	query := database.Conn(ctx, r.db).Model(&entity.Post{}).
		Joins("JOIN accounts ON accounts.id = posts.author_id").
		Where("posts.visibility = ?", entity.VisibilityPublic).
		Where("accounts.visibility = ? AND accounts.active = ?", entity.VisibilityPublic, true).
		Where("posts.author_id <> ?", viewerID)
	return r.paginate(query, page)
}

func (r *feedRepository) AuthorPosts(ctx context.Context, authorID uuid.UUID, includePrivate bool, page dto.PageRequest) ([]entity.Post, int64, error) {
	query := database.Conn(ctx, r.db).Model(&entity.Post{}).Where("author_id = ?", authorID)
	if !includePrivate {
		query = query.Where("visibility = ?", entity.VisibilityPublic)
	}
	return r.paginate(query, page)
}

// paginate counts the matches and loads one page, newest first.
func (r *feedRepository) paginate(query *gorm.DB, page dto.PageRequest) ([]entity.Post, int64, error) {
	page = page.Normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err)
	}

	var posts []entity.Post
	err := query.Select("posts.*").
		Order("posts.created_at DESC").
		Order("posts.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, 0, database.TranslateError(err)
	}
	return posts, total, nil
}
