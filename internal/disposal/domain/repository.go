package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	InsertDetection(ctx context.Context, db *gorm.DB, event *DetectionEvent) error
	FindDetectionByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*DetectionEvent, error)

	// MarkDetectionProcessed flips is_processed only when it is still false.
	// Returns false when another settlement already won.
	MarkDetectionProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, points int64, now time.Time) (bool, error)

	InsertRecord(ctx context.Context, db *gorm.DB, record *DisposalRecord) error
	FindRecordByDetectionID(ctx context.Context, db *gorm.DB, detectionID snowflake.ID) (*DisposalRecord, error)
	ListRecordsByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, page pagination.Pagination) ([]*DisposalRecord, error)
}
