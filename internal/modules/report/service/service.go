package report

import (
	"context"
	"fmt"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	post "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"
	reportDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/dto"
	reportRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/metrics"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/ratelimiter"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitAction = "report"

type Options struct {
	// Cooldown between two reports filed by the same account. Zero disables it.
	Cooldown time.Duration
	// FanoutLimit bounds how many administrators hear about a new report.
	FanoutLimit int
}

type ReportService interface {
	CreateReport(ctx context.Context, actor entity.Actor, postID uuid.UUID, req reportDto.CreateReportRequest) (*entity.Report, error)
	ReviewReport(ctx context.Context, actor entity.Actor, id uuid.UUID, req reportDto.ReviewReportRequest) (*entity.Report, error)
	ListReports(ctx context.Context, actor entity.Actor, status entity.ReportStatus, page dto.PageRequest) (*dto.Page[entity.Report], error)
	GetReport(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Report, error)
}

type reportService struct {
	repo                reportRepo.ReportRepository
	postRepo            postRepo.PostRepository
	accountRepo         accountRepo.AccountRepository
	policy              *visibility.Policy
	postService         post.PostService
	auditService        audit.AuditService
	notificationService notifService.NotificationService
	redisClient         *redis.Client
	tx                  database.Transactor
	opts                Options
	now                 func() time.Time
}

func NewReportService(
	repo reportRepo.ReportRepository,
	postRepo postRepo.PostRepository,
	accountRepo accountRepo.AccountRepository,
	policy *visibility.Policy,
	postService post.PostService,
	auditService audit.AuditService,
	notificationService notifService.NotificationService,
	redisClient *redis.Client,
	tx database.Transactor,
	opts Options,
) ReportService {
	if opts.FanoutLimit < 1 {
		opts.FanoutLimit = 100
	}
	return &reportService{
		repo:                repo,
		postRepo:            postRepo,
		accountRepo:         accountRepo,
		policy:              policy,
		postService:         postService,
		auditService:        auditService,
		notificationService: notificationService,
		redisClient:         redisClient,
		tx:                  tx,
		opts:                opts,
		now:                 time.Now,
	}
}

func (s *reportService) CreateReport(ctx context.Context, actor entity.Actor, postID uuid.UUID, req reportDto.CreateReportRequest) (*entity.Report, error) {
	target, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.EnsureCanView(ctx, target, actor); err != nil {
		return nil, err
	}
	if target.AuthorID == actor.ID {
		return nil, fmt.Errorf("%w: you cannot report your own post", apperror.ErrInvalidOperation)
	}

	exists, err := s.repo.Exists(ctx, actor.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: you already reported this post", apperror.ErrConflict)
	}

	if err := ratelimiter.Enforce(ctx, s.redisClient, actor.ID, rateLimitAction, s.opts.Cooldown); err != nil {
		return nil, err
	}

	report := &entity.Report{
		ReporterID:   actor.ID,
		PostID:       target.ID,
		PostAuthorID: target.AuthorID,
		Reason:       sanitize.Inline(req.Reason),
		Status:       entity.ReportPending,
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, report); err != nil {
			return err
		}

		admins, err := s.accountRepo.ListActiveAdminIDs(ctx, s.opts.FanoutLimit)
		if err != nil {
			return err
		}
		if len(admins) == s.opts.FanoutLimit {
			logger.WarnWithContext(ctx, "report %s: admin fan-out reached its limit of %d, some administrators may not be notified", report.ID, s.opts.FanoutLimit)
		}

		recipients := make([]uuid.UUID, 0, len(admins))
		for _, id := range admins {
			if id != actor.ID {
				recipients = append(recipients, id)
			}
		}
		s.notificationService.NotifyMany(ctx, recipients, notifService.NotifyInput{
			ActorID:       &actor.ID,
			Type:          entity.NotificationReportCreated,
			Title:         "New report",
			Body:          "A post was reported and is waiting for review",
			ReferenceID:   &report.ID,
			ReferenceType: entity.RefReport,
		})

		database.AfterCommit(ctx, func() {
			metrics.ReportsFiled.Inc()
		})
		return nil
	})
	if err != nil {
		// nothing was filed, so the cooldown claimed above is released
		if clearErr := ratelimiter.Clear(ctx, s.redisClient, actor.ID, rateLimitAction); clearErr != nil {
			logger.WarnWithContext(ctx, "failed to release report cooldown for account %s: %v", actor.ID, clearErr)
		}
		return nil, err
	}
	return report, nil
}

// ReviewReport settles a PENDING report. Resolving it removes the reported
// post in the same transaction; any failure leaves the report PENDING.
func (s *reportService) ReviewReport(ctx context.Context, actor entity.Actor, id uuid.UUID, req reportDto.ReviewReportRequest) (*entity.Report, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only administrators can review reports", apperror.ErrForbidden)
	}
	if !req.Decision.IsDecision() {
		return nil, fmt.Errorf("%w: decision must be RESOLVED or REJECTED", apperror.ErrInvalidInput)
	}

	var report *entity.Report
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		changed, err := s.repo.Transition(ctx, id, req.Decision, actor.ID, s.now())
		if err != nil {
			return err
		}

		report, err = s.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: report is already %s", apperror.ErrInvalidState, report.Status)
		}

		if err := s.recordReview(ctx, actor, report); err != nil {
			return err
		}

		if report.Status == entity.ReportResolved {
			if _, err := s.postService.Cascade(ctx, post.CascadeInput{
				Actor:   actor,
				PostID:  report.PostID,
				Trigger: post.TriggerReport,
				Reason:  report.Reason,
			}); err != nil {
				return err
			}
		}

		s.notificationService.Notify(ctx, notifService.NotifyInput{
			AccountID:     report.ReporterID,
			ActorID:       &actor.ID,
			Type:          entity.NotificationReportReviewed,
			Title:         "Your report was reviewed",
			Body:          reviewBody(report.Status),
			ReferenceID:   &report.ID,
			ReferenceType: entity.RefReport,
		})

		decision := string(report.Status)
		database.AfterCommit(ctx, func() {
			metrics.ReportsReviewed.WithLabelValues(decision).Inc()
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) recordReview(ctx context.Context, actor entity.Actor, report *entity.Report) error {
	action := entity.AuditReportRejected
	title := "Report rejected"
	if report.Status == entity.ReportResolved {
		action = entity.AuditReportResolved
		title = "Report resolved"
	}

	description := fmt.Sprintf("Report %s on post %s filed by account %s", report.ID, report.PostID, report.ReporterID)
	if report.Reason != "" {
		description += ": " + report.Reason
	}

	_, err := s.auditService.Record(ctx, audit.RecordInput{
		AdminID:            actor.ID,
		ActionType:         action,
		Title:              title,
		Description:        description,
		AffectedEntityID:   report.ID,
		AffectedEntityType: entity.RefReport,
		AffectedAccountID:  &report.PostAuthorID,
	})
	return err
}

func reviewBody(status entity.ReportStatus) string {
	if status == entity.ReportResolved {
		return "Thanks, the reported post was removed"
	}
	return "Thanks, the reported post was reviewed and kept"
}

func (s *reportService) ListReports(ctx context.Context, actor entity.Actor, status entity.ReportStatus, page dto.PageRequest) (*dto.Page[entity.Report], error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only administrators can list reports", apperror.ErrForbidden)
	}

	reports, total, err := s.repo.List(ctx, status, page)
	if err != nil {
		return nil, err
	}
	return dto.NewPage(reports, page, total), nil
}

func (s *reportService) GetReport(ctx context.Context, actor entity.Actor, id uuid.UUID) (*entity.Report, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only administrators can read reports", apperror.ErrForbidden)
	}
	return s.repo.FindByID(ctx, id)
}
