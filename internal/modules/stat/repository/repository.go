package repository

import (
	"context"

	"github.com/doradosantiago-dev/mindhub-api-sub000/internal/entity"
	"github.com/doradosantiago-dev/mindhub-api-sub000/pkg/database"
	"gorm.io/gorm"
)

type StatRepository interface {
	CountAccounts(ctx context.Context) (total, active, admins int64, err error)
	CountPosts(ctx context.Context) (int64, error)
	CountComments(ctx context.Context) (int64, error)
	CountReportsByStatus(ctx context.Context) (map[entity.ReportStatus]int64, error)
}

type statRepository struct {
	db *gorm.DB
}

func NewStatRepository(db *gorm.DB) StatRepository {
	return &statRepository{db: db}
}

func (r *statRepository) CountAccounts(ctx context.Context) (total, active, admins int64, err error) {
	var row struct {
		Total  int64
		Active int64
		Admins int64
	}
	err = database.Conn(ctx, r.db).Model(&entity.Account{}).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN active THEN 1 ELSE 0 END), 0) AS active, "+
				"COALESCE(SUM(CASE WHEN role = ? AND active THEN 1 ELSE 0 END), 0) AS admins",
			entity.RoleAdmin,
		).
		Scan(&row).Error
	if err != nil {
		return 0, 0, 0, database.TranslateError(err)
	}
	return row.Total, row.Active, row.Admins, nil
}

func (r *statRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Post{}).Count(&count).Error
	return count, database.TranslateError(err)
}

func (r *statRepository) CountComments(ctx context.Context) (int64, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&entity.Comment{}).Count(&count).Error
	return count, database.TranslateError(err)
}

func (r *statRepository) CountReportsByStatus(ctx context.Context) (map[entity.ReportStatus]int64, error) {
	var rows []struct {
		Status entity.ReportStatus
		Count  int64
	}
	err := database.Conn(ctx, r.db).Model(&entity.Report{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(err)
	}

	counts := make(map[entity.ReportStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
