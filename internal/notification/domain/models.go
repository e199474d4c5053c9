package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindInfo       = "info"
	KindReward     = "reward"
	KindRedemption = "redemption"
)

type Notification struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index:ix_notifications_user" json:"user_id"`
	Title     string       `gorm:"not null" json:"title"`
	Body      string       `gorm:"not null" json:"body"`
	Kind      string       `gorm:"not null;default:info" json:"kind"`
	IsRead    bool         `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
