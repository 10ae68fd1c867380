package audit_test

import (
	"context"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	auditRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/testutil"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := audit.NewAuditService(auditRepo.NewAuditRepository(db))
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "root", testutil.Admin())
	author := testutil.CreateAccount(t, db, "author")
	postID := uuid.New()

	entry, err := svc.Record(ctx, audit.RecordInput{
		AdminID:            admin.ID,
		ActionType:         entity.AuditPostDeleted,
		Title:              "Post deleted",
		AffectedEntityID:   postID,
		AffectedEntityType: entity.RefPost,
		AffectedAccountID:  &author.ID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.ID)

	_, err = svc.Record(ctx, audit.RecordInput{AdminID: admin.ID, ActionType: entity.AuditReportRejected})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)

	page, err := svc.List(ctx, entity.ActorOf(admin), auditRepo.AuditFilter{AffectedAccountID: &author.ID}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, postID, page.Data[0].AffectedEntityID)

	_, err = svc.List(ctx, entity.ActorOf(author), auditRepo.AuditFilter{}, dto.PageRequest{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
