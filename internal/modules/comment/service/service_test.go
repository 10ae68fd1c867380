package comment_test

import (
	"context"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	commentDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/dto"
	commentRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/repository"
	comment "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/service"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	notifRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/repository"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/testutil"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(db *gorm.DB) comment.CommentService {
	return comment.NewCommentService(
		commentRepo.NewCommentRepository(db),
		postRepo.NewPostRepository(db),
		accountRepo.NewAccountRepository(db),
		visibility.NewPolicy(followRepo.NewFollowRepository(db)),
		notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil),
		database.NewTransactor(db),
	)
}

func TestCreateComment(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	author := testutil.CreateAccount(t, db, "author")
	fan := testutil.CreateAccount(t, db, "fan")
	post := testutil.CreatePost(t, db, author.ID, entity.VisibilityPublic)

	res, err := svc.CreateComment(ctx, entity.ActorOf(fan), post.ID, commentDto.CreateCommentRequest{Content: "  nice <i>post</i> "})
	require.NoError(t, err)
	assert.Equal(t, "nice post", res.Content)
	assert.Equal(t, "fan", res.Author.Username)
	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.Notification{},
		"account_id = ? AND type = ?", author.ID, entity.NotificationNewComment))

	_, err = svc.CreateComment(ctx, entity.ActorOf(author), post.ID, commentDto.CreateCommentRequest{Content: "thanks"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.Notification{}, "account_id = ?", author.ID))

	_, err = svc.CreateComment(ctx, entity.ActorOf(fan), post.ID, commentDto.CreateCommentRequest{Content: "<p></p>"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestCreateCommentOnPrivatePost(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	author := testutil.CreateAccount(t, db, "author")
	stranger := testutil.CreateAccount(t, db, "stranger")
	admin := testutil.CreateAccount(t, db, "admin", testutil.Admin())
	post := testutil.CreatePost(t, db, author.ID, entity.VisibilityPrivate)

	_, err := svc.CreateComment(ctx, entity.ActorOf(stranger), post.ID, commentDto.CreateCommentRequest{Content: "hi"})
	assert.ErrorIs(t, err, apperror.ErrVisibilityDenied)

	created, err := svc.CreateComment(ctx, entity.ActorOf(admin), post.ID, commentDto.CreateCommentRequest{Content: "hi"})
	require.NoError(t, err)

	_, err = svc.ListComments(ctx, entity.ActorOf(stranger), post.ID, dto.PageRequest{})
	assert.ErrorIs(t, err, apperror.ErrVisibilityDenied)

	page, err := svc.ListComments(ctx, entity.ActorOf(admin), post.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)
}

func TestListCommentsOldestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	author := testutil.CreateAccount(t, db, "author")
	post := testutil.CreatePost(t, db, author.ID, entity.VisibilityPublic)
	first := testutil.CreateComment(t, db, post.ID, author.ID)
	second := testutil.CreateComment(t, db, post.ID, author.ID)

	page, err := svc.ListComments(ctx, entity.ActorOf(author), post.ID, dto.PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, first.ID, page.Data[0].ID)
	assert.Equal(t, second.ID, page.Data[1].ID)
	assert.Equal(t, int64(2), page.Meta.TotalItems)
}

func TestDeleteCommentPermissions(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	author := testutil.CreateAccount(t, db, "author")
	commenter := testutil.CreateAccount(t, db, "commenter")
	other := testutil.CreateAccount(t, db, "other")
	admin := testutil.CreateAccount(t, db, "admin", testutil.Admin())
	post := testutil.CreatePost(t, db, author.ID, entity.VisibilityPublic)

	c1 := testutil.CreateComment(t, db, post.ID, commenter.ID)
	c2 := testutil.CreateComment(t, db, post.ID, commenter.ID)
	c3 := testutil.CreateComment(t, db, post.ID, commenter.ID)

	assert.ErrorIs(t, svc.DeleteComment(ctx, entity.ActorOf(other), c1.ID), apperror.ErrForbidden)

	require.NoError(t, svc.DeleteComment(ctx, entity.ActorOf(commenter), c1.ID))
	require.NoError(t, svc.DeleteComment(ctx, entity.ActorOf(author), c2.ID))
	require.NoError(t, svc.DeleteComment(ctx, entity.ActorOf(admin), c3.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.Comment{}, ""))

	assert.ErrorIs(t, svc.DeleteComment(ctx, entity.ActorOf(admin), c3.ID), apperror.ErrNotFound)
}

func TestCommentRequiresExistingPost(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := commentRepo.NewCommentRepository(db)

	author := testutil.CreateAccount(t, db, "author")

	err := repo.Create(context.Background(), &entity.Comment{PostID: uuid.New(), AuthorID: author.ID, Content: "late"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, testutil.Count(t, db, &entity.Comment{}, ""))
}
