package account_test

import (
	"context"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountDto "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/dto"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	account "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/service"
	auditRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/repository"
	audit "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/audit/service"
	commentRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/comment/repository"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	notifRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/repository"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	postRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/repository"
	post "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/post/service"
	reactionRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/reaction/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/visibility"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/testutil"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) IndexAccount(ctx context.Context, a *entity.Account) error {
	return m.Called(a.Username, a.Visibility).Error(0)
}

func (m *mockIndexer) RemoveAccount(ctx context.Context, id uuid.UUID) error {
	return m.Called(id).Error(0)
}

func newService(db *gorm.DB, indexer *mockIndexer) account.AccountService {
	tx := database.NewTransactor(db)
	accounts := accountRepo.NewAccountRepository(db)
	follows := followRepo.NewFollowRepository(db)
	posts := postRepo.NewPostRepository(db)
	notifications := notifRepo.NewNotificationRepository(db)
	audits := audit.NewAuditService(auditRepo.NewAuditRepository(db))
	postService := post.NewPostService(posts, accounts, visibility.NewPolicy(follows), audits,
		notifService.NewNotificationService(notifications, nil), nil, nil, tx, "mindhub")

	return account.NewAccountService(
		accounts,
		follows,
		posts,
		commentRepo.NewCommentRepository(db),
		reactionRepo.NewReactionRepository(db),
		notifications,
		postService,
		audits,
		indexer,
		nil,
		nil,
		tx,
		account.Options{JWTSecret: "test-secret", UploadFolder: "mindhub"},
	)
}

func TestRegisterAndLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	indexer := new(mockIndexer)
	indexer.On("IndexAccount", "ana", entity.VisibilityPublic).Return(nil).Once()
	svc := newService(db, indexer)
	ctx := context.Background()

	res, err := svc.Register(ctx, accountDto.RegisterRequest{
		Username: "ana",
		Email:    "Ana@Example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Bearer", res.TokenType)
	assert.Equal(t, "ana@example.com", res.Account.Email)
	assert.Equal(t, "ana", res.Account.DisplayName)
	assert.Equal(t, entity.RoleUser, res.Account.Role)
	indexer.AssertExpectations(t)

	_, err = svc.Register(ctx, accountDto.RegisterRequest{Username: "other", Email: "ana@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	_, err = svc.Register(ctx, accountDto.RegisterRequest{Username: "ana", Email: "new@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	login, err := svc.Login(ctx, accountDto.LoginRequest{Email: "ANA@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, login.Account.ID)

	_, err = svc.Login(ctx, accountDto.LoginRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	_, err = svc.Login(ctx, accountDto.LoginRequest{Email: "nobody@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	db := testutil.NewTestDB(t)
	indexer := new(mockIndexer)
	indexer.On("IndexAccount", mock.Anything, mock.Anything).Return(nil)
	svc := newService(db, indexer)
	ctx := context.Background()

	res, err := svc.Register(ctx, accountDto.RegisterRequest{Username: "bruno", Email: "bruno@example.com", Password: "supersecret"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&entity.Account{}).Where("id = ?", res.Account.ID).Update("active", false).Error)

	_, err = svc.Login(ctx, accountDto.LoginRequest{Email: "bruno@example.com", Password: "supersecret"})
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	indexer := new(mockIndexer)
	indexer.On("IndexAccount", "carla", entity.VisibilityPrivate).Return(nil).Once()
	svc := newService(db, indexer)
	ctx := context.Background()

	carla := testutil.CreateAccount(t, db, "carla")
	admin := testutil.CreateAccount(t, db, "admin", testutil.Admin())

	name := " Carla <b>M.</b> "
	bio := "<p>hello</p><p>world</p>"
	private := entity.VisibilityPrivate
	res, err := svc.UpdateProfile(ctx, entity.ActorOf(carla), accountDto.UpdateProfileRequest{
		DisplayName: &name,
		Bio:         &bio,
		Visibility:  &private,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Carla M.", res.DisplayName)
	require.NotNil(t, res.Bio)
	assert.Equal(t, "hello\nworld", *res.Bio)
	assert.Equal(t, entity.VisibilityPrivate, res.Visibility)
	indexer.AssertExpectations(t)

	public := entity.VisibilityPublic
	_, err = svc.UpdateProfile(ctx, entity.ActorOf(admin), accountDto.UpdateProfileRequest{Visibility: &public}, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)

	empty := "   "
	_, err = svc.UpdateProfile(ctx, entity.ActorOf(carla), accountDto.UpdateProfileRequest{DisplayName: &empty}, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestGetProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db, new(mockIndexer))
	ctx := context.Background()

	dora := testutil.CreateAccount(t, db, "dora", testutil.Private())
	eli := testutil.CreateAccount(t, db, "eli")
	fede := testutil.CreateAccount(t, db, "fede")
	testutil.CreateAccount(t, db, "ghost", testutil.Inactive())
	admin := testutil.CreateAccount(t, db, "admin", testutil.Admin())
	testutil.CreateFollow(t, db, eli.ID, dora.ID)
	testutil.CreateFollow(t, db, fede.ID, dora.ID)
	testutil.CreateFollow(t, db, dora.ID, eli.ID)

	profile, err := svc.GetProfile(ctx, entity.ActorOf(eli), "dora")
	require.NoError(t, err)
	assert.Equal(t, int64(2), profile.FollowersCount)
	assert.Equal(t, int64(1), profile.FollowingCount)
	assert.True(t, profile.IsFollowing)

	own, err := svc.GetProfile(ctx, entity.ActorOf(dora), "dora")
	require.NoError(t, err)
	assert.False(t, own.IsFollowing)

	_, err = svc.GetProfile(ctx, entity.ActorOf(eli), "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = svc.GetProfile(ctx, entity.ActorOf(admin), "ghost")
	assert.NoError(t, err)
}

func TestLastAdminIsProtected(t *testing.T) {
	db := testutil.NewTestDB(t)
	indexer := new(mockIndexer)
	indexer.On("IndexAccount", mock.Anything, mock.Anything).Return(nil)
	indexer.On("RemoveAccount", mock.Anything).Return(nil)
	svc := newService(db, indexer)
	ctx := context.Background()

	root := testutil.CreateAccount(t, db, "root", testutil.Admin())
	actor := entity.ActorOf(root)

	_, err := svc.SetRole(ctx, actor, root.ID, entity.RoleUser)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
	_, err = svc.SetActive(ctx, actor, root.ID, false)
	assert.ErrorIs(t, err, apperror.ErrInvalidOperation)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, actor, root.ID), apperror.ErrInvalidOperation)
	assert.Zero(t, testutil.Count(t, db, &entity.AuditEntry{}, ""))

	helper := testutil.CreateAccount(t, db, "helper")
	promoted, err := svc.SetRole(ctx, actor, helper.ID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, promoted.Role)
	assert.Equal(t, entity.VisibilityPrivate, promoted.Visibility)

	demoted, err := svc.SetRole(ctx, actor, root.ID, entity.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleUser, demoted.Role)

	assert.Equal(t, int64(2), testutil.Count(t, db, &entity.AuditEntry{}, "action_type = ?", entity.AuditAccountRole))
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db, new(mockIndexer))
	ctx := context.Background()

	user := testutil.CreateAccount(t, db, "user")
	other := testutil.CreateAccount(t, db, "other")
	actor := entity.ActorOf(user)

	_, err := svc.ListAccounts(ctx, actor, accountDto.ListAccountsQuery{}, dto.PageRequest{})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.SetRole(ctx, actor, other.ID, entity.RoleAdmin)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.SetActive(ctx, actor, other.ID, false)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, actor, other.ID), apperror.ErrForbidden)
}

func TestSetActiveIsAudited(t *testing.T) {
	db := testutil.NewTestDB(t)
	indexer := new(mockIndexer)
	indexer.On("IndexAccount", "target", entity.VisibilityPublic).Return(nil).Twice()
	svc := newService(db, indexer)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", testutil.Admin())
	target := testutil.CreateAccount(t, db, "target")

	res, err := svc.SetActive(ctx, entity.ActorOf(admin), target.ID, false)
	require.NoError(t, err)
	assert.False(t, res.Active)

	var stored entity.Account
	require.NoError(t, db.First(&stored, "id = ?", target.ID).Error)
	assert.False(t, stored.Active)

	_, err = svc.SetActive(ctx, entity.ActorOf(admin), target.ID, true)
	require.NoError(t, err)

	var entries []entity.AuditEntry
	require.NoError(t, db.Where("action_type = ?", entity.AuditAccountActivity).Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, target.ID, *entries[0].AffectedAccountID)
	indexer.AssertExpectations(t)

	page, err := svc.ListAccounts(ctx, entity.ActorOf(admin), accountDto.ListAccountsQuery{Role: entity.RoleUser}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "target", page.Data[0].Username)
}

func TestDeleteAccountPurgesEverything(t *testing.T) {
	db := testutil.NewTestDB(t)
	indexer := new(mockIndexer)
	svc := newService(db, indexer)
	ctx := context.Background()

	admin := testutil.CreateAccount(t, db, "admin", testutil.Admin())
	doomed := testutil.CreateAccount(t, db, "doomed")
	friend := testutil.CreateAccount(t, db, "friend")
	indexer.On("RemoveAccount", doomed.ID).Return(nil).Once()

	own := testutil.CreatePost(t, db, doomed.ID, entity.VisibilityPublic)
	testutil.CreateComment(t, db, own.ID, friend.ID)
	testutil.CreateReaction(t, db, own.ID, friend.ID, entity.ReactionLove)

	theirs := testutil.CreatePost(t, db, friend.ID, entity.VisibilityPublic)
	testutil.CreateComment(t, db, theirs.ID, doomed.ID)
	testutil.CreateReaction(t, db, theirs.ID, doomed.ID, entity.ReactionSad)
	testutil.CreateFollow(t, db, doomed.ID, friend.ID)
	testutil.CreateFollow(t, db, friend.ID, doomed.ID)
	require.NoError(t, db.Create(&entity.Notification{AccountID: doomed.ID, Type: entity.NotificationNewFollower, Title: "t", Body: "b"}).Error)

	require.NoError(t, svc.DeleteAccount(ctx, entity.ActorOf(admin), doomed.ID))

	assert.Zero(t, testutil.Count(t, db, &entity.Account{}, "id = ?", doomed.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.Post{}, "author_id = ?", doomed.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.Comment{}, "post_id = ? OR author_id = ?", own.ID, doomed.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.Reaction{}, "post_id = ? OR account_id = ?", own.ID, doomed.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.Follow{}, "follower_id = ? OR followed_id = ?", doomed.ID, doomed.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.Notification{}, "account_id = ?", doomed.ID))

	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.Post{}, "id = ?", theirs.ID))
	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.AuditEntry{}, "action_type = ?", entity.AuditAccountDeleted))
	assert.Zero(t, testutil.Count(t, db, &entity.AuditEntry{}, "action_type = ?", entity.AuditPostDeleted))
	indexer.AssertExpectations(t)
}

func TestSelfDeleteIsNotAudited(t *testing.T) {
	db := testutil.NewTestDB(t)
	indexer := new(mockIndexer)
	svc := newService(db, indexer)

	me := testutil.CreateAccount(t, db, "me")
	indexer.On("RemoveAccount", me.ID).Return(nil).Once()

	require.NoError(t, svc.DeleteAccount(context.Background(), entity.ActorOf(me), me.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.Account{}, "id = ?", me.ID))
	assert.Zero(t, testutil.Count(t, db, &entity.AuditEntry{}, ""))
	indexer.AssertExpectations(t)
}
