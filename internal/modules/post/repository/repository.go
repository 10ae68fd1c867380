package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	Update(ctx context.Context, post *entity.Post) error
	IDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)
	// DeleteCascade removes reactions, then comments, then the post itself,
	// and verifies nothing is left for postID. It reports whether a post row
	// was deleted.
	DeleteCascade(ctx context.Context, postID uuid.UUID) (bool, error)
	CommentCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(post).Error)
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *entity.Post) error {
	return database.TranslateError(database.Conn(ctx, r.db).Save(post).Error)
}

func (r *postRepository) IDsByAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := database.Conn(ctx, r.db).Model(&entity.Post{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error
	return ids, database.TranslateError(err)
}

func (r *postRepository) DeleteCascade(ctx context.Context, postID uuid.UUID) (bool, error) {
	db := database.Conn(ctx, r.db)

	var existed int64
	if err := db.Model(&entity.Post{}).Where("id = ?", postID).Count(&existed).Error; err != nil {
		return false, database.TranslateError(err)
	}

	if err := db.Where("post_id = ?", postID).Delete(&entity.Reaction{}).Error; err != nil {
		return false, database.TranslateError(err)
	}
	if err := db.Where("post_id = ?", postID).Delete(&entity.Comment{}).Error; err != nil {
		return false, database.TranslateError(err)
	}
	result := db.Where("id = ?", postID).Delete(&entity.Post{})
	if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
		return false, fmt.Errorf("%w: post %s gained dependent rows during deletion: %w", apperror.ErrCascadeFailure, postID, result.Error)
	}
	if result.Error != nil {
		return false, database.TranslateError(result.Error)
	}

	leftovers, err := r.leftovers(ctx, postID)
	if err != nil {
		return false, err
	}
	if leftovers > 0 || (existed > 0 && result.RowsAffected == 0) {
		return false, fmt.Errorf("%w: post %s still has %d dependent rows", apperror.ErrCascadeFailure, postID, leftovers)
	}

	return result.RowsAffected > 0, nil
}

func (r *postRepository) leftovers(ctx context.Context, postID uuid.UUID) (int64, error) {
	db := database.Conn(ctx, r.db)

	var total int64
	for _, model := range []any{&entity.Reaction{}, &entity.Comment{}} {
		var n int64
		if err := db.Model(model).Where("post_id = ?", postID).Count(&n).Error; err != nil {
			return 0, database.TranslateError(err)
		}
		total += n
	}

	var posts int64
	if err := db.Model(&entity.Post{}).Where("id = ?", postID).Count(&posts).Error; err != nil {
		return 0, database.TranslateError(err)
	}
	return total + posts, nil
}

type postCount struct {
	PostID uuid.UUID
	Total  int64
}

func (r *postRepository) CommentCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &entity.Comment{}, postIDs)
}

func (r *postRepository) ReactionCounts(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &entity.Reaction{}, postIDs)
}

// countBy runs one grouped query for the whole page of posts.
func (r *postRepository) countBy(ctx context.Context, model any, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []postCount
	err := database.Conn(ctx, r.db).Model(model).
		Select("post_id, count(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}
