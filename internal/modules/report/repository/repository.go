package repository

import (
	"context"
	"time"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error)
	Exists(ctx context.Context, reporterID, postID uuid.UUID) (bool, error)
	// Transition moves a PENDING report to status and reports whether a row
	// changed. Concurrent reviewers race on the status predicate.
	Transition(ctx context.Context, id uuid.UUID, status entity.ReportStatus, reviewerID uuid.UUID, at time.Time) (bool, error)
	List(ctx context.Context, status entity.ReportStatus, page dto.PageRequest) ([]entity.Report, int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *entity.Report) error {
	return database.TranslateError(database.Conn(ctx, r.db).Create(report).Error)
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Report, error) {
	var report entity.Report
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &report, nil
}

func (r *reportRepository) Exists(ctx context.Context, reporterID, postID uuid.UUID) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Report{}).
		Where("reporter_id = ? AND post_id = ?", reporterID, postID).
		Count(&count).Error
	if err != nil {
		return false, database.TranslateError(err)
	}
	return count > 0, nil
}

func (r *reportRepository) Transition(ctx context.Context, id uuid.UUID, status entity.ReportStatus, reviewerID uuid.UUID, at time.Time) (bool, error) {
	result := database.Conn(ctx, r.db).Model(&entity.Report{}).
		Where("id = ? AND status = ?", id, entity.ReportPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return false, database.TranslateError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *reportRepository) List(ctx context.Context, status entity.ReportStatus, page dto.PageRequest) ([]entity.Report, int64, error) {
	page = page.Normalize()
	query := database.Conn(ctx, r.db).Model(&entity.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(err)
	}

	var reports []entity.Report
	err := query.Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&reports).Error
	if err != nil {
		return nil, 0, database.TranslateError(err)
	}
	return reports, total, nil
}
