package reaction

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	reactionDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/dto"
	reactionRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	countsTTL = 7 * 24 * time.Hour
	// marker field so a post without reactions is still a cache hit
	countsMarker = "_"
)

func countsKey(postID uuid.UUID) string {
	return fmt.Sprintf("counts:post:%s", postID.String())
}

type ReactionService interface {
	// Toggle creates, replaces or removes the actor's reaction on a post.
	Toggle(ctx context.Context, actor entity.Actor, postID uuid.UUID, kind entity.ReactionKind) (*reactionDto.ToggleResponse, error)
	Summary(ctx context.Context, actor entity.Actor, postID uuid.UUID) (*reactionDto.SummaryResponse, error)
	// Forget drops the cached counters of a post.
	Forget(ctx context.Context, postID uuid.UUID)
}

type reactionService struct {
	repo                reactionRepo.ReactionRepository
	postRepo            postRepo.PostRepository
	policy              *visibility.Policy
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	tx                  database.Transactor
}

func NewReactionService(
	repo reactionRepo.ReactionRepository,
	postRepo postRepo.PostRepository,
	policy *visibility.Policy,
	notificationService notifService.NotificationService,
	redisClient *redis.Client,
	tx database.Transactor,
) ReactionService {
	return &reactionService{
		repo:                repo,
		postRepo:            postRepo,
		policy:              policy,
		notificationService: notificationService,
		redisClient:         redisClient,
		tx:                  tx,
	}
}

func (s *reactionService) Toggle(ctx context.Context, actor entity.Actor, postID uuid.UUID, kind entity.ReactionKind) (*reactionDto.ToggleResponse, error) {
	res := &reactionDto.ToggleResponse{PostID: postID}
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// the foreign key rejects the insert if a cascade removes the post first
		post, err := s.postRepo.FindByID(ctx, postID)
		if err != nil {
			return err
		}
		if err := s.policy.EnsureCanInteract(ctx, post, actor); err != nil {
			return err
		}
		if !kind.Valid() {
			return fmt.Errorf("%w: unknown reaction kind %q", apperror.ErrInvalidInput, kind)
		}

		existing, err := s.repo.Find(ctx, actor.ID, postID)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			// a concurrent duplicate insert surfaces as ErrConflict from the unique index
			if err := s.repo.Create(ctx, &entity.Reaction{AccountID: actor.ID, PostID: postID, Kind: kind}); err != nil {
				return err
			}
			res.Outcome = reactionDto.OutcomeCreated
			res.Kind = &kind

			if post.AuthorID != actor.ID {
				s.notificationService.Notify(ctx, notifService.NotifyInput{
					AccountID:     post.AuthorID,
					ActorID:       &actor.ID,
					Type:          entity.NotificationNewReaction,
					Title:         "New reaction",
					Body:          fmt.Sprintf("Someone reacted with %s to your post", kind),
					ReferenceID:   &post.ID,
					ReferenceType: entity.RefPost,
				})
			}

		case existing.Kind == kind:
			if err := s.repo.Delete(ctx, existing); err != nil {
				return err
			}
			res.Outcome = reactionDto.OutcomeRemoved
			res.Previous = &existing.Kind

		default:
			previous := existing.Kind
			if err := s.repo.UpdateKind(ctx, existing, kind); err != nil {
				return err
			}
			res.Outcome = reactionDto.OutcomeUpdated
			res.Kind = &kind
			res.Previous = &previous
		}

		database.AfterCommit(ctx, func() {
			metrics.ReactionToggles.WithLabelValues(string(res.Outcome)).Inc()
			s.adjustCounts(database.Detach(ctx), postID, res.Previous, res.Kind)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// adjustCounts keeps a cached hash in step. A missing hash is left alone and
// rebuilt from the database on the next read.
func (s *reactionService) adjustCounts(ctx context.Context, postID uuid.UUID, previous, current *entity.ReactionKind) {
	if s.redisClient == nil {
		return
	}

	key := countsKey(postID)
	exists, err := s.redisClient.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return
	}

	pipe := s.redisClient.Pipeline()
	if previous != nil {
		pipe.HIncrBy(ctx, key, string(*previous), -1)
	}
	if current != nil {
		pipe.HIncrBy(ctx, key, string(*current), 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.WarnWithContext(ctx, "redis reaction update failed, dropping cached counts: %v", err)
		s.Forget(ctx, postID)
	}
}

func (s *reactionService) Summary(ctx context.Context, actor entity.Actor, postID uuid.UUID) (*reactionDto.SummaryResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.EnsureCanView(ctx, post, actor); err != nil {
		return nil, err
	}

	counts, err := s.cachedCounts(ctx, postID)
	if err != nil {
		return nil, err
	}

	res := &reactionDto.SummaryResponse{PostID: postID, Counts: counts}
	for _, n := range counts {
		res.Total += n
	}

	mine, err := s.repo.Find(ctx, actor.ID, postID)
	if err != nil {
		return nil, err
	}
	if mine != nil {
		res.UserReacted = &mine.Kind
	}
	return res, nil
}

func (s *reactionService) cachedCounts(ctx context.Context, postID uuid.UUID) (map[entity.ReactionKind]int64, error) {
	key := countsKey(postID)

	if s.redisClient != nil {
		val, err := s.redisClient.HGetAll(ctx, key).Result()
		if err == nil && len(val) > 0 {
			counts := make(map[entity.ReactionKind]int64)
			for k, v := range val {
				if k == countsMarker {
					continue
				}
				n, _ := strconv.ParseInt(v, 10, 64)
				if n > 0 {
					counts[entity.ReactionKind(k)] = n
				}
			}
			return counts, nil
		}
	}

	counts, err := s.repo.CountsByKind(ctx, postID)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		pipe := s.redisClient.Pipeline()
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, countsMarker, 0)
		for kind, n := range counts {
			pipe.HSet(ctx, key, string(kind), n)
		}
		pipe.Expire(ctx, key, countsTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.WarnWithContext(ctx, "failed to cache reaction counts for post %s: %v", postID, err)
		}
	}
	return counts, nil
}

func (s *reactionService) Forget(ctx context.Context, postID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, countsKey(postID)).Err(); err != nil {
		logger.WarnWithContext(ctx, "failed to drop cached counts for post %s: %v", postID, err)
	}
}
