package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusOpen      = "open"
	StatusResolved  = "resolved"
	StatusDismissed = "dismissed"
)

// Report is a user-filed problem with a bin or the app.
type Report struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID `json:"user_id,omitempty"`
	BinID       snowflake.ID `json:"bin_id,omitempty"`
	Category    string       `gorm:"not null" json:"category"`
	Description string       `gorm:"not null" json:"description"`
	Status      string       `gorm:"not null;default:open;index:ix_issue_reports_status" json:"status"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Report) TableName() string {
	return "issue_reports"
}

func ValidStatus(status string) bool {
	switch status {
	case StatusOpen, StatusResolved, StatusDismissed:
		return true
	default:
		return false
	}
}
