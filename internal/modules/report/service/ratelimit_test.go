package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	auditRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	notifRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/repository"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	post "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"
	reportDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/dto"
	reportRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/repository"
	report "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/report/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/testutil"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errAdminLookup = errors.New("admin lookup failed")

// flakyAccounts fails the admin fan-out lookup while failNext is set.
type flakyAccounts struct {
	accountRepo.AccountRepository
	failNext bool
}

func (f *flakyAccounts) ListActiveAdminIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if f.failNext {
		f.failNext = false
		return nil, errAdminLookup
	}
	return f.AccountRepository.ListActiveAdminIDs(ctx, limit)
}

func TestFailedReportReleasesCooldown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)
	accounts := &flakyAccounts{AccountRepository: accountRepo.NewAccountRepository(db), failNext: true}
	posts := postRepo.NewPostRepository(db)
	policy := visibility.NewPolicy(followRepo.NewFollowRepository(db))
	audits := audit.NewAuditService(auditRepo.NewAuditRepository(db))
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	postService := post.NewPostService(posts, accounts, policy, audits, notifications, nil, nil, tx, "mindhub")
	svc := report.NewReportService(reportRepo.NewReportRepository(db), posts, accounts, policy, postService, audits, notifications, rdb, tx, report.Options{Cooldown: time.Minute})
	ctx := context.Background()

	author := testutil.CreateAccount(t, db, "author")
	reporter := testutil.CreateAccount(t, db, "reporter")
	testutil.CreateAccount(t, db, "admin", testutil.Admin())
	first := testutil.CreatePost(t, db, author.ID, entity.VisibilityPublic)
	second := testutil.CreatePost(t, db, author.ID, entity.VisibilityPublic)

	_, err := svc.CreateReport(ctx, entity.ActorOf(reporter), first.ID, reportDto.CreateReportRequest{})
	assert.ErrorIs(t, err, errAdminLookup)
	assert.Zero(t, testutil.Count(t, db, &entity.Report{}, ""))

	_, err = svc.CreateReport(ctx, entity.ActorOf(reporter), first.ID, reportDto.CreateReportRequest{})
	require.NoError(t, err)

	_, err = svc.CreateReport(ctx, entity.ActorOf(reporter), second.ID, reportDto.CreateReportRequest{})
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	var limited *ratelimiter.RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.Positive(t, limited.RetryAfter)
}
