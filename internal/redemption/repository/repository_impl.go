package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/redemption/domain"
	"github.com/trash2cash/platform/pkg/db/option"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, redemption *domain.Redemption) error {
	return db.WithContext(ctx).Create(redemption).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Redemption, error) {
	var redemption domain.Redemption
	err := db.WithContext(ctx).Take(&redemption, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *repo) FindByVoucher(ctx context.Context, db *gorm.DB, voucherCode string) (*domain.Redemption, error) {
	var redemption domain.Redemption
	err := db.WithContext(ctx).Take(&redemption, "voucher_code = ?", voucherCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &redemption, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Redemption, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Redemption{}).
		Order("created_at DESC, id DESC")

	if filter.UserID != 0 {
		stmt = stmt.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	stmt = option.ApplyPagination(page).Apply(stmt)

	var redemptions []*domain.Redemption
	if err := stmt.Find(&redemptions).Error; err != nil {
		return nil, err
	}
	return redemptions, nil
}

func (r *repo) TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to, adminNotes string, decidedAt, completedAt *time.Time, now time.Time) (bool, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": now,
	}
	if adminNotes != "" {
		updates["admin_notes"] = adminNotes
	}
	if decidedAt != nil {
		updates["decided_at"] = *decidedAt
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}

	result := db.WithContext(ctx).
		Model(&domain.Redemption{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
