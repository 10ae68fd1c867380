package repository

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID, page dto.PageRequest) ([]entity.Comment, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByAuthor(ctx context.Context, authorID uuid.UUID) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(comment).Error)
}

func (r *commentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Comment, error) {
	var comment entity.Comment
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &comment, nil
}

// ListByPost returns comments oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uuid.UUID, page dto.PageRequest) ([]entity.Comment, int64, error) {
	page = page.Normalize()
	query := database.Conn(ctx, r.db).Model(&entity.Comment{}).Where("post_id = ?", postID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err)
	}

	var comments []entity.Comment
	err := query.Order("created_at ASC").Order("id ASC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&comments).Error
	if err != nil {
		return nil, 0, database.TranslateError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return database.TranslateError(database.Conn(ctx, r.db).Delete(&entity.Comment{}, "id = ?", id).Error)
}

func (r *commentRepository) DeleteByAuthor(ctx context.Context, authorID uuid.UUID) error {
	return database.TranslateError(database.Conn(ctx, r.db).Where("author_id = ?", authorID).Delete(&entity.Comment{}).Error)
}
