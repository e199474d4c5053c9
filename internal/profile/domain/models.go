package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
)

// UserProfile accumulates lifetime reward state for one user.
type UserProfile struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID         snowflake.ID `gorm:"not null;uniqueIndex:ux_user_profiles_user" json:"user_id"`
	TotalPoints    int64        `gorm:"not null;default:0" json:"total_points"`
	TotalDisposals int64        `gorm:"not null;default:0" json:"total_disposals"`
	TotalWeightKg  float64      `gorm:"not null;default:0" json:"total_weight_kg"`
	PlasticCount   int64        `gorm:"not null;default:0" json:"plastic_count"`
	PaperCount     int64        `gorm:"not null;default:0" json:"paper_count"`
	MetalCount     int64        `gorm:"not null;default:0" json:"metal_count"`
	GlassCount     int64        `gorm:"not null;default:0" json:"glass_count"`
	Level          int          `gorm:"not null;default:1" json:"level"`
	QRPayload      string       `gorm:"column:qr_payload" json:"qr_payload,omitempty"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// levelThresholds are the lifetime point totals that unlock levels 2..5.
var levelThresholds = []int64{100, 250, 500, 1000}

// LevelForPoints maps a lifetime point total to a level between 1 and 5.
func LevelForPoints(points int64) int {
	level := 1
	for _, threshold := range levelThresholds {
		if points >= threshold {
			level++
		}
	}
	return level
}

// CounterColumn maps a waste category to the per-material counter it bumps.
// Only the four tracked materials have one; everything else, cardboard
// included, moves just the totals.
func CounterColumn(category string) string {
	switch category {
	case "plastic":
		return "plastic_count"
	case "paper":
		return "paper_count"
	case "metal":
		return "metal_count"
	case "glass":
		return "glass_count"
	default:
		return ""
	}
}

// QRPayloadFor renders the token printed on a user's personal QR code.
func QRPayloadFor(user accountdomain.User) string {
	return fmt.Sprintf("USER:%s|CNIC:%s|USERNAME:%s", user.ID.String(), user.CNIC, user.Username)
}
