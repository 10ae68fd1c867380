package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ContextUserID = "user_id"
	ContextActor  = "actor"
)

// AccountFinder loads the account named by a token subject.
type AccountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
}

type AuthMiddleware struct {
	accounts AccountFinder
	secret   string
}

func NewAuthMiddleware(accounts AccountFinder, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		accounts: accounts,
		secret:   secret,
	}
}

// IssueToken signs an HS256 token whose subject is the account id.
func IssueToken(secret string, accountID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			response.Error(c, fmt.Errorf("%w: authorization required", apperror.ErrUnauthenticated))
			return
		}

		accountID, err := m.parseSubject(tokenString)
		if err != nil {
			response.Error(c, fmt.Errorf("%w: invalid or expired token", apperror.ErrUnauthenticated))
			return
		}

		account, err := m.accounts.FindByID(c.Request.Context(), accountID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				response.Error(c, fmt.Errorf("%w: account not found", apperror.ErrUnauthenticated))
				return
			}
			response.Error(c, err)
			return
		}
		if !account.Active {
			response.Error(c, fmt.Errorf("%w: account is deactivated", apperror.ErrUnauthenticated))
			return
		}

		c.Set(ContextUserID, account.ID.String())
		c.Set(ContextActor, entity.ActorOf(account))
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			response.Error(c, err)
			return
		}

		if !actor.IsAdmin() {
			response.Error(c, fmt.Errorf("%w: admin access required", apperror.ErrForbidden))
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) parseSubject(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, errors.New("invalid token claims")
	}
	return uuid.Parse(claims.Subject)
}

// CurrentActor returns the actor resolved by RequireAuth.
func CurrentActor(c *gin.Context) (entity.Actor, error) {
	value, exists := c.Get(ContextActor)
	if !exists {
		return entity.Actor{}, apperror.ErrUnauthenticated
	}
	actor, ok := value.(entity.Actor)
	if !ok || actor.ID == uuid.Nil {
		return entity.Actor{}, apperror.ErrUnauthenticated
	}
	return actor, nil
}

func extractBearerToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
		return parts[1]
	}
	return ""
}
