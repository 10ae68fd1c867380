package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	notifRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying an account's notifications.
func Channel(accountID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", accountID.String())
}

type NotifyInput struct {
	AccountID     uuid.UUID
	ActorID       *uuid.UUID
	Type          entity.NotificationType
	Title         string
	Body          string
	ReferenceID   *uuid.UUID
	ReferenceType string
}

type NotificationService interface {
	// Notify records a notification in the caller's transaction. Failures are
	// logged and swallowed; the triggering operation still commits. The row
	// is published to Redis once the transaction commits.
	Notify(ctx context.Context, in NotifyInput)
	// NotifyMany sends the same notification to every account in accountIDs.
	NotifyMany(ctx context.Context, accountIDs []uuid.UUID, in NotifyInput)
	GetNotifications(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) (*dto.Page[entity.Notification], error)
	MarkAsRead(ctx context.Context, accountID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, accountID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) Notify(ctx context.Context, in NotifyInput) {
	notification := &entity.Notification{
		AccountID:   in.AccountID,
		ActorID:     in.ActorID,
		Type:        in.Type,
		Title:       in.Title,
		Body:        in.Body,
		ReferenceID: in.ReferenceID,
	}
	if in.ReferenceType != "" {
		refType := in.ReferenceType
		notification.ReferenceType = &refType
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		metrics.NotificationsDropped.Inc()
		logger.WarnWithContext(ctx, "dropping %s notification for account %s: %v", in.Type, in.AccountID, err)
		return
	}

	database.AfterCommit(ctx, func() {
		s.publish(database.Detach(ctx), notification)
	})
}

func (s *notificationService) NotifyMany(ctx context.Context, accountIDs []uuid.UUID, in NotifyInput) {
	for _, id := range accountIDs {
		next := in
		next.AccountID = id
		s.Notify(ctx, next)
	}
}

func (s *notificationService) publish(ctx context.Context, notification *entity.Notification) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(notification)
	if err != nil {
		logger.ErrorWithContext(ctx, "failed to encode notification %s: %v", notification.ID, err)
		return
	}
	if err := s.redisClient.Publish(ctx, Channel(notification.AccountID), payload).Err(); err != nil {
		metrics.NotificationsDropped.Inc()
		logger.WarnWithContext(ctx, "failed to publish notification %s: %v", notification.ID, err)
	}
}

func (s *notificationService) GetNotifications(ctx context.Context, accountID uuid.UUID, page dto.PageRequest) (*dto.Page[entity.Notification], error) {
	notifications, total, err := s.repo.GetByAccountID(ctx, accountID, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPage(notifications, page, total), nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, accountID, id uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, id, accountID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: notification %s", apperror.ErrNotFound, id)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, accountID)
}

func (s *notificationService) UnreadCount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, accountID)
}
