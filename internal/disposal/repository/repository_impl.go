package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/disposal/domain"
	"github.com/trash2cash/platform/pkg/db/option"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertDetection(ctx context.Context, db *gorm.DB, event *domain.DetectionEvent) error {
	return db.WithContext(ctx).Create(event).Error
}

func (r *repo) FindDetectionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.DetectionEvent, error) {
	var event domain.DetectionEvent
	err := db.WithContext(ctx).Take(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repo) MarkDetectionProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, points int64, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(`
		UPDATE detection_events
		SET is_processed = ?, points_awarded = ?, updated_at = ?
		WHERE id = ? AND is_processed = ?
	`, true, points, now, id, false)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertRecord(ctx context.Context, db *gorm.DB, record *domain.DisposalRecord) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindRecordByDetectionID(ctx context.Context, db *gorm.DB, detectionID snowflake.ID) (*domain.DisposalRecord, error) {
	var record domain.DisposalRecord
	err := db.WithContext(ctx).Take(&record, "detection_event_id = ?", detectionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) ListRecordsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*domain.DisposalRecord, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.DisposalRecord{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")

	stmt = option.ApplyPagination(page).Apply(stmt)

	var records []*domain.DisposalRecord
	if err := stmt.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
