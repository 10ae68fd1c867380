package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	accountRepo "github.com/doradosantiago-dev/mindhub-api-sub000/internal/modules/account/repository"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/apperror"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/logger"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const accountsIndex = "accounts"

// AccountIndexer keeps the discovery index in line with account changes.
type AccountIndexer interface {
	// IndexAccount adds or refreshes account, or drops it when it is no
	// longer discoverable.
	IndexAccount(ctx context.Context, account *entity.Account) error
	RemoveAccount(ctx context.Context, id uuid.UUID) error
}

type SearchService interface {
	AccountIndexer
	SearchAccounts(ctx context.Context, query string, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error)
}

type searchService struct {
	client      meilisearch.ServiceManager
	accountRepo accountRepo.AccountRepository
}

// NewSearchService indexes into Meilisearch when client is set. Without a
// client, indexing is a no-op and searches query the database directly.
func NewSearchService(client meilisearch.ServiceManager, accountRepo accountRepo.AccountRepository) SearchService {
	s := &searchService{client: client, accountRepo: accountRepo}
	if client != nil {
		s.initIndex()
	}
	return s
}

func (s *searchService) initIndex() {
	filterable := []any{"id"}
	if _, err := s.client.Index(accountsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logger.Warn("failed to update accounts filterable attributes: %v", err)
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(accountsIndex).UpdateSortableAttributes(&sortable); err != nil {
		logger.Warn("failed to update accounts sortable attributes: %v", err)
	}
}

type accountDoc struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
	CreatedAt   int64  `json:"created_at"`
}

// Discoverable reports whether account belongs in the discovery index.
func Discoverable(account *entity.Account) bool {
	return account.Active && !account.IsAdmin() && account.Visibility == entity.VisibilityPublic
}

func (s *searchService) IndexAccount(ctx context.Context, account *entity.Account) error {
	if s.client == nil {
		return nil
	}
	if !Discoverable(account) {
		return s.RemoveAccount(ctx, account.ID)
	}

	doc := accountDoc{
		ID:          account.ID.String(),
		Username:    account.Username,
		DisplayName: sanitize.Inline(account.DisplayName),
		Bio:         sanitize.Inline(stringOrEmpty(account.Bio)),
		AvatarURL:   stringOrEmpty(account.AvatarURL),
		CreatedAt:   account.CreatedAt.Unix(),
	}

	primaryKey := "id"
	task, err := s.client.Index(accountsIndex).AddDocuments([]accountDoc{doc}, &primaryKey)
	if err != nil {
		return fmt.Errorf("failed to index account %s: %w", account.ID, err)
	}
	logger.InfoWithContext(ctx, "indexed account %s, task id: %d", account.ID, task.TaskUID)
	return nil
}

func (s *searchService) RemoveAccount(ctx context.Context, id uuid.UUID) error {
	if s.client == nil {
		return nil
	}
	if _, err := s.client.Index(accountsIndex).DeleteDocument(id.String()); err != nil {
		return fmt.Errorf("failed to remove account %s from index: %w", id, err)
	}
	return nil
}

type searchResult struct {
	Hits               []accountDoc `json:"hits"`
	EstimatedTotalHits int64        `json:"estimatedTotalHits"`
}

func (s *searchService) SearchAccounts(ctx context.Context, query string, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", apperror.ErrInvalidInput)
	}
	page = page.Normalize()

	if s.client == nil {
		return s.searchDatabase(ctx, query, page)
	}

	raw, err := s.client.Index(accountsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Limit:  int64(page.Limit),
		Offset: int64(page.Offset()),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: account search failed: %v", apperror.ErrStorageUnavailable, err)
	}

	var result searchResult
	if err := json.Unmarshal(*raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	items := make([]dto.AccountSummary, 0, len(result.Hits))
	for _, hit := range result.Hits {
		summary := dto.AccountSummary{ID: hit.ID, Username: hit.Username, DisplayName: hit.DisplayName}
		if hit.AvatarURL != "" {
			avatar := hit.AvatarURL
			summary.AvatarURL = &avatar
		}
		items = append(items, summary)
	}
	return dto.NewPage(items, page, result.EstimatedTotalHits), nil
}

func (s *searchService) searchDatabase(ctx context.Context, query string, page dto.PageRequest) (*dto.Page[dto.AccountSummary], error) {
	active := true
	accounts, total, err := s.accountRepo.List(ctx, accountRepo.AccountFilter{
		Role:       entity.RoleUser,
		Visibility: entity.VisibilityPublic,
		Active:     &active,
		Query:      query,
	}, page)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, dto.AccountSummary{ID: a.ID.String(), Username: a.Username, DisplayName: a.DisplayName, AvatarURL: a.AvatarURL})
	}
	return dto.NewPage(items, page, total), nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
