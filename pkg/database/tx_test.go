package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/testutil"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAfterCommitRunsOnlyOnCommit(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	var ran []string
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { ran = append(ran, "committed") })
		assert.Empty(t, ran)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"committed"}, ran)

	boom := errors.New("boom")
	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		database.AfterCommit(ctx, func() { ran = append(ran, "rolled back") })
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"committed"}, ran)
}

func TestAfterCommitWithoutTransactionRunsNow(t *testing.T) {
	ran := false
	database.AfterCommit(context.Background(), func() { ran = true })
	assert.True(t, ran)
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		err := tx.WithTransaction(ctx, func(ctx context.Context) error {
			return database.Conn(ctx, db).Create(&entity.Account{
				Username:     "inner",
				Email:        "inner@mindhub.test",
				PasswordHash: "x",
				DisplayName:  "inner",
			}).Error
		})
		require.NoError(t, err)
		return errors.New("outer fails")
	})
	require.Error(t, err)

	assert.Zero(t, testutil.Count(t, db, &entity.Account{}, "username = ?", "inner"))
}

func TestDetachDropsTransaction(t *testing.T) {
	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)

	err := tx.WithTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, database.InTransaction(ctx))
		assert.False(t, database.InTransaction(database.Detach(ctx)))
		return nil
	})
	require.NoError(t, err)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, database.TranslateError(nil))
	assert.ErrorIs(t, database.TranslateError(gorm.ErrRecordNotFound), apperror.ErrNotFound)
	assert.ErrorIs(t, database.TranslateError(gorm.ErrDuplicatedKey), apperror.ErrConflict)
	assert.ErrorIs(t, database.TranslateError(gorm.ErrForeignKeyViolated), apperror.ErrNotFound)
	assert.ErrorIs(t, database.TranslateError(context.DeadlineExceeded), apperror.ErrStorageUnavailable)

	business := apperror.ErrForbidden
	assert.Equal(t, business, database.TranslateError(business))
}
