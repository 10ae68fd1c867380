// Package testutil builds throwaway SQLite databases and fixtures for
// repository and service tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/bootstrap"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated SQLite database that lives for the duration of t.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mindhub.db")
	dsn := fmt.Sprintf("file:%s?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(false))
	require.NoError(t, err)
	require.NoError(t, bootstrap.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type AccountOption func(*entity.Account)

func Admin() AccountOption {
	return func(a *entity.Account) { a.Role = entity.RoleAdmin }
}

func Private() AccountOption {
	return func(a *entity.Account) { a.Visibility = entity.VisibilityPrivate }
}

func Inactive() AccountOption {
	return func(a *entity.Account) { a.Active = false }
}

// CreateAccount inserts an active PUBLIC user named username.
func CreateAccount(t *testing.T, db *gorm.DB, username string, opts ...AccountOption) *entity.Account {
	t.Helper()

	account := &entity.Account{
		Username:     username,
		Email:        username + "@mindhub.test",
		PasswordHash: "x",
		DisplayName:  username,
		Role:         entity.RoleUser,
		Visibility:   entity.VisibilityPublic,
		Active:       true,
	}
	for _, opt := range opts {
		opt(account)
	}

	active := account.Active
	account.Active = true
	require.NoError(t, db.Create(account).Error)

	// gorm skips zero values in favour of column defaults on insert.
	if !active {
		require.NoError(t, db.Model(account).Update("active", false).Error)
		account.Active = false
	}
	return account
}

func CreatePost(t *testing.T, db *gorm.DB, authorID uuid.UUID, visibility entity.Visibility) *entity.Post {
	t.Helper()

	post := &entity.Post{
		AuthorID:   authorID,
		Content:    "post by " + authorID.String()[:8],
		Visibility: visibility,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func CreateComment(t *testing.T, db *gorm.DB, postID, authorID uuid.UUID) *entity.Comment {
	t.Helper()

	comment := &entity.Comment{PostID: postID, AuthorID: authorID, Content: "comment"}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

func CreateReaction(t *testing.T, db *gorm.DB, postID, accountID uuid.UUID, kind entity.ReactionKind) *entity.Reaction {
	t.Helper()

	reaction := &entity.Reaction{PostID: postID, AccountID: accountID, Kind: kind}
	require.NoError(t, db.Create(reaction).Error)
	return reaction
}

func CreateFollow(t *testing.T, db *gorm.DB, followerID, followedID uuid.UUID) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Follow{FollowerID: followerID, FollowedID: followedID}).Error)
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()

	var n int64
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
