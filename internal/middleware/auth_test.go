package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	args := m.Called(ctx, id)
	account, _ := args.Get(0).(*entity.Account)
	return account, args.Error(1)
}

func newRouter(accounts AccountFinder, admin bool) *gin.Engine {
	m := NewAuthMiddleware(accounts, testSecret)
	router := gin.New()
	chain := []gin.HandlerFunc{m.RequireAuth()}
	if admin {
		chain = append(chain, m.RequireAdmin())
	}
	chain = append(chain, func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID.String(), "role": actor.Role})
	})
	router.GET("/", chain...)
	return router
}

func request(t *testing.T, router *gin.Engine, token string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := map[string]string{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestRequireAuth_ResolvesActor(t *testing.T) {
	account := &entity.Account{ID: uuid.New(), Role: entity.RoleUser, Active: true}
	accounts := new(mockAccounts)
	accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)

	token, _, err := IssueToken(testSecret, account.ID, time.Hour)
	require.NoError(t, err)

	w, body := request(t, newRouter(accounts, false), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, account.ID.String(), body["id"])
	assert.Equal(t, string(entity.RoleUser), body["role"])
}

func TestRequireAuth_Rejects(t *testing.T) {
	inactive := &entity.Account{ID: uuid.New(), Role: entity.RoleUser, Active: false}
	missing := uuid.New()

	accounts := new(mockAccounts)
	accounts.On("FindByID", mock.Anything, inactive.ID).Return(inactive, nil)
	accounts.On("FindByID", mock.Anything, missing).Return(nil, apperror.ErrNotFound)

	inactiveToken, _, _ := IssueToken(testSecret, inactive.ID, time.Hour)
	missingToken, _, _ := IssueToken(testSecret, missing, time.Hour)
	expiredToken, _, _ := IssueToken(testSecret, inactive.ID, -time.Minute)
	foreignToken, _, _ := IssueToken("other-secret", inactive.ID, time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage", "not-a-jwt"},
		{"expired", expiredToken},
		{"wrong secret", foreignToken},
		{"deleted account", missingToken},
		{"deactivated account", inactiveToken},
	}

	router := newRouter(accounts, false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := request(t, router, tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, apperror.CodeUnauthenticated, body["code"])
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	user := &entity.Account{ID: uuid.New(), Role: entity.RoleUser, Active: true}
	admin := &entity.Account{ID: uuid.New(), Role: entity.RoleAdmin, Active: true}

	accounts := new(mockAccounts)
	accounts.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	accounts.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)

	router := newRouter(accounts, true)

	userToken, _, _ := IssueToken(testSecret, user.ID, time.Hour)
	w, body := request(t, router, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, body["code"])

	adminToken, _, _ := IssueToken(testSecret, admin.ID, time.Hour)
	w, _ = request(t, router, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCurrentActor_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := CurrentActor(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(HeaderRequestID))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}
