package follow_test

import (
	"context"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	followRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/repository"
	follow "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/follow/service"
	notifRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/repository"
	notifService "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/notification/service"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/testutil"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(db *gorm.DB) follow.FollowService {
	notifications := notifService.NewNotificationService(notifRepo.NewNotificationRepository(db), nil)
	return follow.NewFollowService(
		followRepo.NewFollowRepository(db),
		accountRepo.NewAccountRepository(db),
		notifications,
		database.NewTransactor(db),
	)
}

func TestFollow(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice")
	bob := testutil.CreateAccount(t, db, "bob")
	ghost := testutil.CreateAccount(t, db, "ghost", testutil.Inactive())

	require.NoError(t, svc.Follow(ctx, entity.ActorOf(alice), bob.ID))

	exists, err := svc.Exists(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	// edges are directed
	exists, err = svc.Exists(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.Notification{},
		"account_id = ? AND type = ?", bob.ID, entity.NotificationNewFollower))

	tests := []struct {
		name   string
		target uuid.UUID
		want   error
	}{
		{"self", alice.ID, apperror.ErrInvalidOperation},
		{"duplicate", bob.ID, apperror.ErrConflict},
		{"missing account", uuid.New(), apperror.ErrNotFound},
		{"inactive account", ghost.ID, apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Follow(ctx, entity.ActorOf(alice), tt.target)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, int64(1), testutil.Count(t, db, &entity.Follow{}, ""))
}

func TestUnfollow(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	alice := testutil.CreateAccount(t, db, "alice")
	bob := testutil.CreateAccount(t, db, "bob")
	testutil.CreateFollow(t, db, alice.ID, bob.ID)

	require.NoError(t, svc.Unfollow(ctx, entity.ActorOf(alice), bob.ID))
	assert.ErrorIs(t, svc.Unfollow(ctx, entity.ActorOf(alice), bob.ID), apperror.ErrNotFound)
}

func TestCountsAndListings(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	star := testutil.CreateAccount(t, db, "star")
	fans := []*entity.Account{
		testutil.CreateAccount(t, db, "fan1"),
		testutil.CreateAccount(t, db, "fan2"),
		testutil.CreateAccount(t, db, "fan3"),
	}
	for _, fan := range fans {
		require.NoError(t, svc.Follow(ctx, entity.ActorOf(fan), star.ID))
	}
	require.NoError(t, svc.Follow(ctx, entity.ActorOf(star), fans[0].ID))

	counts, err := svc.Counts(ctx, star.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts.Followers)
	assert.Equal(t, int64(1), counts.Following)

	followers, err := svc.ListFollowers(ctx, star.ID, dto.PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, followers.Data, 2)
	assert.Equal(t, int64(3), followers.Meta.TotalItems)
	assert.Equal(t, 2, followers.Meta.TotalPages)
	// newest edge first
	assert.Equal(t, "fan3", followers.Data[0].Username)
	assert.Equal(t, "fan2", followers.Data[1].Username)

	following, err := svc.ListFollowing(ctx, star.ID, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, following.Data, 1)
	assert.Equal(t, "fan1", following.Data[0].Username)

	_, err = svc.ListFollowers(ctx, uuid.New(), dto.PageRequest{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
