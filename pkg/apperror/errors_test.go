package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", fmt.Errorf("%w: post", ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"visibility", ErrVisibilityDenied, http.StatusForbidden, CodeVisibilityDenied},
		{"forbidden", fmt.Errorf("%w: admin only", ErrForbidden), http.StatusForbidden, CodeForbidden},
		{"conflict", ErrConflict, http.StatusConflict, CodeConflict},
		{"invalid operation", ErrInvalidOperation, http.StatusUnprocessableEntity, CodeInvalidOperation},
		{"invalid state", ErrInvalidState, http.StatusConflict, CodeInvalidState},
		{"cascade", ErrCascadeFailure, http.StatusInternalServerError, CodeCascadeFailure},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated},
		{"storage", ErrStorageUnavailable, http.StatusServiceUnavailable, CodeStorageUnavailable},
		{"opaque", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestVisibilityDeniedIsDistinctFromForbidden(t *testing.T) {
	assert.False(t, errors.Is(ErrVisibilityDenied, ErrForbidden))
	_, denied := Classify(ErrVisibilityDenied)
	_, forbidden := Classify(ErrForbidden)
	assert.NotEqual(t, denied, forbidden)
}

func TestIsBusiness(t *testing.T) {
	assert.True(t, IsBusiness(fmt.Errorf("wrap: %w", ErrConflict)))
	assert.False(t, IsBusiness(ErrStorageUnavailable))
	assert.False(t, IsBusiness(errors.New("db down")))
}
