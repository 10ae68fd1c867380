package repository

import (
	"context"
	"strings"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountFilter struct {
	Role       entity.Role
	Visibility entity.Visibility
	Active     *bool
	Query      string
}

type AccountRepository interface {
	Create(ctx context.Context, account *entity.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByUsername(ctx context.Context, username string) (*entity.Account, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Account, error)
	Update(ctx context.Context, account *entity.Account) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, filter AccountFilter, page dto.PageRequest) ([]entity.Account, int64, error)
	CountActiveAdmins(ctx context.Context) (int64, error)
	ListActiveAdminIDs(ctx context.Context, limit int) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(account).Error)
}

func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(email))
}

func (r *accountRepository) FindByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *accountRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Account, error) {
	var account entity.Account
	if err := database.Conn(ctx, r.db).Where(query, args...).First(&account).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &account, nil
}

func (r *accountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var accounts []entity.Account
	err := database.Conn(ctx, r.db).Where("id IN ?", ids).Find(&accounts).Error
	return accounts, database.TranslateError(err)
}

func (r *accountRepository) Update(ctx context.Context, account *entity.Account) error {
	return database.TranslateError(database.Conn(ctx, r.db).Save(account).Error)
}

func (r *accountRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := database.Conn(ctx, r.db).Model(&entity.Account{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter, page dto.PageRequest) ([]entity.Account, int64, error) {
	page = page.Normalize()
	query := database.Conn(ctx, r.db).Model(&entity.Account{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Visibility != "" {
		query = query.Where("visibility = ?", filter.Visibility)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err)
	}

	var accounts []entity.Account
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, database.TranslateError(err)
	}
	return accounts, total, nil
}

func (r *accountRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Account{}).
		Where("role = ? AND active = ?", entity.RoleAdmin, true).
		Count(&count).Error
	return count, database.TranslateError(err)
}

// ListActiveAdminIDs returns at most limit administrator ids, oldest first.
func (r *accountRepository) ListActiveAdminIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := database.Conn(ctx, r.db).Model(&entity.Account{}).
		Where("role = ? AND active = ?", entity.RoleAdmin, true).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, database.TranslateError(err)
}

func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := database.Conn(ctx, r.db).Delete(&entity.Account{}, "id = ?", id)
	if result.Error != nil {
		return database.TranslateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return database.TranslateError(gorm.ErrRecordNotFound)
	}
	return nil
}
