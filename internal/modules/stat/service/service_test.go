package stat_test

import (
	"context"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	statRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/repository"
	stat "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/stat/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/testutil"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverview(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := stat.NewStatService(statRepo.NewStatRepository(db))
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "root", testutil.Admin())
	alice := testutil.CreateAccount(t, db, "alice")
	bob := testutil.CreateAccount(t, db, "bob")
	testutil.CreateAccount(t, db, "ghost", testutil.Inactive())

	post := testutil.CreatePost(t, db, alice.ID, entity.VisibilityPublic)
	testutil.CreatePost(t, db, alice.ID, entity.VisibilityPrivate)
	testutil.CreateComment(t, db, post.ID, bob.ID)

	require.NoError(t, db.Create(&entity.Report{ReporterID: bob.ID, PostID: post.ID, PostAuthorID: alice.ID}).Error)
	require.NoError(t, db.Create(&entity.Report{ReporterID: admin.ID, PostID: post.ID, PostAuthorID: alice.ID, Status: entity.ReportRejected}).Error)

	res, err := svc.Overview(ctx, entity.ActorOf(admin))
	require.NoError(t, err)

	assert.Equal(t, int64(4), res.Accounts.Total)
	assert.Equal(t, int64(3), res.Accounts.Active)
	assert.Equal(t, int64(1), res.Accounts.Admins)
	assert.Equal(t, int64(1), res.Accounts.Inactive)
	assert.Equal(t, int64(2), res.Posts)
	assert.Equal(t, int64(1), res.Comments)
	assert.Equal(t, int64(1), res.Reports.Pending)
	assert.Equal(t, int64(0), res.Reports.Resolved)
	assert.Equal(t, int64(1), res.Reports.Rejected)
}

func TestOverviewRequiresAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := stat.NewStatService(statRepo.NewStatRepository(db))

	alice := testutil.CreateAccount(t, db, "alice")

	_, err := svc.Overview(context.Background(), entity.ActorOf(alice))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
