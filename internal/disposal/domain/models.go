package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const StatusCompleted = "completed"

// DetectionEvent is one classified item seen by a bin camera. It stays
// unprocessed until the reward pipeline settles it exactly once.
type DetectionEvent struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	BinID         snowflake.ID `gorm:"index:ix_detection_events_bin" json:"bin_id,omitempty"`
	UserID        snowflake.ID `gorm:"index:ix_detection_events_user_processed" json:"user_id,omitempty"`
	Category      string       `gorm:"not null" json:"category"`
	Confidence    float64      `gorm:"not null;default:0" json:"confidence"`
	WeightKg      float64      `gorm:"not null;default:0" json:"weight_kg"`
	ImageRef      string       `json:"image_ref,omitempty"`
	IsProcessed   bool         `gorm:"not null;default:false;index:ix_detection_events_user_processed" json:"is_processed"`
	PointsAwarded int64        `gorm:"not null;default:0" json:"points_awarded"`
	DetectedAt    time.Time    `gorm:"not null" json:"detected_at"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (DetectionEvent) TableName() string {
	return "detection_events"
}

// DisposalRecord is the settled outcome of one detection event. The unique
// detection_event_id reference is what makes settlement idempotent at the
// storage layer.
type DisposalRecord struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	DetectionEventID snowflake.ID `gorm:"not null;uniqueIndex:ux_disposal_records_detection" json:"detection_event_id"`
	UserID           snowflake.ID `gorm:"index:ix_disposal_records_user" json:"user_id,omitempty"`
	BinID            snowflake.ID `json:"bin_id,omitempty"`
	Category         string       `gorm:"not null" json:"category"`
	WeightKg         float64      `gorm:"not null;default:0" json:"weight_kg"`
	Points           int64        `gorm:"not null;default:0" json:"points"`
	Status           string       `gorm:"not null;default:completed" json:"status"`
	DisposedAt       time.Time    `gorm:"not null" json:"disposed_at"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (DisposalRecord) TableName() string {
	return "disposal_records"
}
