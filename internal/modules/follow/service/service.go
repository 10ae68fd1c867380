package follow

import (
	"context"
	"errors"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	followDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/dto"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/metrics"
	"github.com/google/uuid"
)

type FollowService interface {
	Follow(ctx context.Context, actor entity.Actor, targetID uuid.UUID) error
	Unfollow(ctx context.Context, actor entity.Actor, targetID uuid.UUID) error
	Exists(ctx context.Context, followerID, followedID uuid.UUID) (bool, error)
	Counts(ctx context.Context, accountID uuid.UUID) (*followDto.FollowCounts, error)
	ListFollowers(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error)
	ListFollowing(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error)
}

type followService struct {
	repo                followRepo.FollowRepository
	accountRepo         accountRepo.AccountRepository
	notificationService notifService.NotificationService
	tx                  database.Transactor
}

func NewFollowService(repo followRepo.FollowRepository, accountRepo accountRepo.AccountRepository, notificationService notifService.NotificationService, tx database.Transactor) FollowService {
	return &followService{
		repo:                repo,
		accountRepo:         accountRepo,
		notificationService: notificationService,
		tx:                  tx,
	}
}

func (s *followService) Follow(ctx context.Context, actor entity.Actor, targetID uuid.UUID) error {
	if actor.ID == targetID {
		return fmt.Errorf("%w: cannot follow yourself", apperror.ErrInvalidOperation)
	}

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		target, err := s.accountRepo.FindByID(ctx, targetID)
		if err != nil {
			return err
		}
		if !target.Active {
			return fmt.Errorf("%w: account %s", apperror.ErrNotFound, targetID)
		}

		exists, err := s.repo.Exists(ctx, actor.ID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: already following %s", apperror.ErrConflict, target.Username)
		}

		// a concurrent duplicate insert surfaces as ErrConflict from the unique index
		if err := s.repo.Create(ctx, &entity.Follow{FollowerID: actor.ID, FollowedID: targetID}); err != nil {
			return err
		}

		s.notificationService.Notify(ctx, notifService.NotifyInput{
			AccountID:     targetID,
			ActorID:       &actor.ID,
			Type:          entity.NotificationNewFollower,
			Title:         "New follower",
			Body:          "Someone started following you",
			ReferenceID:   &actor.ID,
			ReferenceType: entity.RefAccount,
		})
		return nil
	})
	if err != nil {
		return err
	}

	metrics.FollowChanges.WithLabelValues("follow").Inc()
	return nil
}

func (s *followService) Unfollow(ctx context.Context, actor entity.Actor, targetID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, actor.ID, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: not following %s", apperror.ErrNotFound, targetID)
	}

	metrics.FollowChanges.WithLabelValues("unfollow").Inc()
	return nil
}

func (s *followService) Exists(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, followerID, followedID)
}

func (s *followService) Counts(ctx context.Context, accountID uuid.UUID) (*followDto.FollowCounts, error) {
	followers, err := s.repo.CountFollowers(ctx, accountID)
	if err != nil {
		return nil, err
	}
	following, err := s.repo.CountFollowing(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &followDto.FollowCounts{Followers: followers, Following: following}, nil
}

func (s *followService) ListFollowers(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error) {
	if err := s.ensureAccount(ctx, accountID); err != nil {
		return nil, err
	}
	accounts, total, err := s.repo.ListFollowers(ctx, accountID, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPage(followDto.ToAccountSummaries(accounts), page, total), nil
}

func (s *followService) ListFollowing(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error) {
	if err := s.ensureAccount(ctx, accountID); err != nil {
		return nil, err
	}
	accounts, total, err := s.repo.ListFollowing(ctx, accountID, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPage(followDto.ToAccountSummaries(accounts), page, total), nil
}

func (s *followService) ensureAccount(ctx context.Context, accountID uuid.UUID) error {
	if _, err := s.accountRepo.FindByID(ctx, accountID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("%w: account %s", apperror.ErrNotFound, accountID)
		}
		return err
	}
	return nil
}
