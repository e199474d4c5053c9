package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/notification/domain"
	"github.com/trash2cash/platform/pkg/db/option"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, notification *domain.Notification) error {
	return db.WithContext(ctx).Create(notification).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, unreadOnly bool, page pagination.Pagination) ([]*domain.Notification, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")

	if unreadOnly {
		stmt = stmt.Where("is_read = ?", false)
	}

	stmt = option.ApplyPagination(page).Apply(stmt)

	var notifications []*domain.Notification
	if err := stmt.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) MarkRead(ctx context.Context, db *gorm.DB, id, userID snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(`
		UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?
	`, true, id, userID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) MarkAllRead(ctx context.Context, db *gorm.DB, userID snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(`
		UPDATE notifications SET is_read = ? WHERE user_id = ? AND is_read = ?
	`, true, userID, false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
