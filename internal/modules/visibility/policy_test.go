package visibility

import (
	"context"
	"errors"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFollows struct {
	mock.Mock
}

func (m *mockFollows) Exists(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, followedID)
	return args.Bool(0), args.Error(1)
}

func TestCanView(t *testing.T) {
	ctx := context.Background()
	author := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name       string
		visibility entity.Visibility
		actor      entity.Actor
		follows    *bool
		want       Decision
	}{
		{"author sees own private post", entity.VisibilityPrivate, entity.Actor{ID: author, Role: entity.RoleUser}, nil, Allow},
		{"admin sees private post", entity.VisibilityPrivate, entity.Actor{ID: stranger, Role: entity.RoleAdmin}, nil, Allow},
		{"anyone sees public post", entity.VisibilityPublic, entity.Actor{ID: stranger, Role: entity.RoleUser}, nil, Allow},
		{"follower sees private post", entity.VisibilityPrivate, entity.Actor{ID: stranger, Role: entity.RoleUser}, boolPtr(true), Allow},
		{"stranger denied private post", entity.VisibilityPrivate, entity.Actor{ID: stranger, Role: entity.RoleUser}, boolPtr(false), Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			follows := new(mockFollows)
			if tt.follows != nil {
				follows.On("Exists", ctx, tt.actor.ID, author).Return(*tt.follows, nil).Once()
			}

			post := &entity.Post{ID: uuid.New(), AuthorID: author, Visibility: tt.visibility}
			got, err := CanView(ctx, post, tt.actor, follows)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			// the graph is only consulted when rules 1-3 do not decide
			follows.AssertExpectations(t)
			if tt.follows == nil {
				follows.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCanInteractMatchesCanView(t *testing.T) {
	ctx := context.Background()
	follows := new(mockFollows)
	follows.On("Exists", ctx, mock.Anything, mock.Anything).Return(false, nil)

	post := &entity.Post{ID: uuid.New(), AuthorID: uuid.New(), Visibility: entity.VisibilityPrivate}
	actor := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}

	view, err := CanView(ctx, post, actor, follows)
	require.NoError(t, err)
	interact, err := CanInteract(ctx, post, actor, follows)
	require.NoError(t, err)
	assert.Equal(t, view, interact)
}

func TestPolicyEnsure(t *testing.T) {
	ctx := context.Background()
	author := uuid.New()
	actor := entity.Actor{ID: uuid.New(), Role: entity.RoleUser}
	post := &entity.Post{ID: uuid.New(), AuthorID: author, Visibility: entity.VisibilityPrivate}

	t.Run("denied", func(t *testing.T) {
		follows := new(mockFollows)
		follows.On("Exists", ctx, actor.ID, author).Return(false, nil)

		err := NewPolicy(follows).EnsureCanInteract(ctx, post, actor)
		assert.ErrorIs(t, err, apperror.ErrVisibilityDenied)
	})

	t.Run("graph failure is not a denial", func(t *testing.T) {
		follows := new(mockFollows)
		follows.On("Exists", ctx, actor.ID, author).Return(false, errors.New("boom"))

		err := NewPolicy(follows).EnsureCanView(ctx, post, actor)
		require.Error(t, err)
		assert.False(t, errors.Is(err, apperror.ErrVisibilityDenied))
	})

	t.Run("allowed", func(t *testing.T) {
		follows := new(mockFollows)
		follows.On("Exists", ctx, actor.ID, author).Return(true, nil)

		assert.NoError(t, NewPolicy(follows).EnsureCanView(ctx, post, actor))
	})
}

func boolPtr(b bool) *bool {
	return &b
}
