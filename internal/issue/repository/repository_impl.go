package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/issue/domain"
	"github.com/trash2cash/platform/pkg/db/option"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	return db.WithContext(ctx).Create(report).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Report, error) {
	var report domain.Report
	err := db.WithContext(ctx).Take(&report, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Report, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Report{}).
		Order("created_at DESC, id DESC")

	if filter.UserID != 0 {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.BinID != 0 {
		stmt = stmt.Where("bin_id = ?", filter.BinID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt = option.ApplyPagination(page).Apply(stmt)

	var reports []*domain.Report
	if err := stmt.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, now time.Time) error {
	return db.WithContext(ctx).Exec(`
		UPDATE issue_reports SET status = ?, updated_at = ? WHERE id = ?
	`, status, now, id).Error
}
