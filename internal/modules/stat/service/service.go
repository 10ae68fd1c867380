package stat

import (
	"context"
	"fmt"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	statDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/dto"
	statRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
)

// StatService summarises platform activity for the moderation dashboard.
type StatService interface {
	Overview(ctx context.Context, actor entity.Actor) (*statDto.OverviewResponse, error)
}

type statService struct {
	repo statRepo.StatRepository
}

func NewStatService(repo statRepo.StatRepository) StatService {
	return &statService{repo: repo}
}

func (s *statService) Overview(ctx context.Context, actor entity.Actor) (*statDto.OverviewResponse, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: administrator role required", apperror.ErrForbidden)
	}

	total, active, admins, err := s.repo.CountAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	posts, err := s.repo.CountPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	comments, err := s.repo.CountComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	reports, err := s.repo.CountReportsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	return &statDto.OverviewResponse{
		Accounts: statDto.AccountStats{
			Total:    total,
			Active:   active,
			Admins:   admins,
			Inactive: total - active,
		},
		Posts:    posts,
		Comments: comments,
		Reports: statDto.ReportStats{
			Pending:  reports[entity.ReportPending],
			Resolved: reports[entity.ReportResolved],
			Rejected: reports[entity.ReportRejected],
		},
	}, nil
}
