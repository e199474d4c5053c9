package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/pkg/db/pagination"
)

// CreateDetectionRequest captures one classified item before settlement.
type CreateDetectionRequest struct {
	UserID     snowflake.ID
	BinID      snowflake.ID
	Category   string
	Confidence float64
	WeightKg   float64
	ImageRef   string
}

type ListDisposalsRequest struct {
	UserID    string
	PageToken string
	PageSize  int32
}

type ListDisposalsResponse struct {
	pagination.PageInfo
	Disposals []DisposalRecord `json:"disposals"`
}

// Receipt is what the user sees after a settled disposal.
type Receipt struct {
	Record       DisposalRecord `json:"record"`
	PointsEarned int64          `json:"points_earned"`
	TotalPoints  int64          `json:"total_points"`
	Level        int            `json:"level"`
	LevelUp      bool           `json:"level_up"`
}

type Service interface {
	// CreateDetection stores an unprocessed detection event.
	CreateDetection(context.Context, CreateDetectionRequest) (DetectionEvent, error)

	// ProcessDetection settles one detection atomically: it awards points,
	// writes the disposal record, bumps the profile counters and recomputes
	// the level. A detection settles at most once.
	ProcessDetection(ctx context.Context, detectionID snowflake.ID) (Receipt, error)

	// Dispose is CreateDetection followed by ProcessDetection.
	Dispose(context.Context, CreateDetectionRequest) (Receipt, error)

	ListByUser(context.Context, ListDisposalsRequest) (ListDisposalsResponse, error)
}

var (
	ErrInvalidUser       = errors.New("invalid_user")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidID         = errors.New("invalid_id")
	ErrDetectionNotFound = errors.New("detection_not_found")
	ErrAlreadyProcessed  = errors.New("already_processed")
)
