package repository

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReactionRepository interface {
	// Find returns nil without error when the account has not reacted.
	Find(ctx context.Context, accountID, postID uuid.UUID) (*entity.Reaction, error)
	Create(ctx context.Context, reaction *entity.Reaction) error
	UpdateKind(ctx context.Context, reaction *entity.Reaction, kind entity.ReactionKind) error
	Delete(ctx context.Context, reaction *entity.Reaction) error
	CountsByKind(ctx context.Context, postID uuid.UUID) (map[entity.ReactionKind]int64, error)
	// DeleteByAccount removes every reaction of the account and returns the
	// posts they were on.
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Find(ctx context.Context, accountID, postID uuid.UUID) (*entity.Reaction, error) {
	// Use Find with slice to avoid "record not found" log noise from GORM's First()
	var existing []entity.Reaction
	err := database.Conn(ctx, r.db).
		Where("account_id = ? AND post_id = ?", accountID, postID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return &existing[0], nil
}

func (r *reactionRepository) Create(ctx context.Context, reaction *entity.Reaction) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(reaction).Error)
}

func (r *reactionRepository) UpdateKind(ctx context.Context, reaction *entity.Reaction, kind entity.ReactionKind) error {
	err := database.Conn(ctx, r.db).Model(reaction).Update("kind", kind).Error
	return database.TranslateError(err)
}

func (r *reactionRepository) Delete(ctx context.Context, reaction *entity.Reaction) error {
	return database.TranslateError(database.Conn(ctx, r.db).Delete(reaction).Error)
}

func (r *reactionRepository) CountsByKind(ctx context.Context, postID uuid.UUID) (map[entity.ReactionKind]int64, error) {
	type Result struct {
		Kind  entity.ReactionKind
		Count int64
	}
	var results []Result

	err := database.Conn(ctx, r.db).
		Model(&entity.Reaction{}).
		Select("kind, count(*) as count").
		Where("post_id = ?", postID).
		Group("kind").
		Scan(&results).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	counts := make(map[entity.ReactionKind]int64)
	for _, res := range results {
		counts[res.Kind] = res.Count
	}
	return counts, nil
}

func (r *reactionRepository) DeleteByAccount(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	db := database.Conn(ctx, r.db)

	var postIDs []uuid.UUID
	if err := db.Model(&entity.Reaction{}).Where("account_id = ?", accountID).Pluck("post_id", &postIDs).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	if err := db.Where("account_id = ?", accountID).Delete(&entity.Reaction{}).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return postIDs, nil
}
