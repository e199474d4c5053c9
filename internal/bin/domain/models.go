package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	StatusActive      = "active"
	StatusFull        = "full"
	StatusMaintenance = "maintenance"
	StatusOffline     = "offline"
)

// Bin is a deployed smart bin.
type Bin struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Serial       string            `gorm:"not null;uniqueIndex:ux_bins_serial" json:"serial"`
	Location     string            `json:"location,omitempty"`
	Status       string            `gorm:"not null;default:active" json:"status"`
	FillLevel    int               `gorm:"not null;default:0" json:"fill_level"`
	BatteryLevel *int              `json:"battery_level,omitempty"`
	LastSeenAt   *time.Time        `json:"last_seen_at,omitempty"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Bin) TableName() string {
	return "bins"
}

// ValidStatus reports whether the value is a known bin status.
func ValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusFull, StatusMaintenance, StatusOffline:
		return true
	default:
		return false
	}
}
