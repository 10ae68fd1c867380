package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// TranslateError maps storage errors onto the apperror taxonomy. Errors that
// are neither a known business outcome nor a connectivity problem are
// returned untouched.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsBusiness(err) || errors.Is(err, apperror.ErrStorageUnavailable) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", apperror.ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", apperror.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: referenced row does not exist: %w", apperror.ErrNotFound, err)
	case isUnavailable(err):
		return fmt.Errorf("%w: %w", apperror.ErrStorageUnavailable, err)
	}

	return err
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
