package domain

import (
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is a registered participant. CNIC is the national identity number
// printed on physical cards and embedded in QR tokens.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"not null;uniqueIndex:ux_users_username" json:"username"`
	CNIC         string       `gorm:"column:cnic;not null;uniqueIndex:ux_users_cnic" json:"cnic"`
	Email        string       `json:"email,omitempty"`
	PasswordHash string       `gorm:"not null" json:"-"`
	IsStaff      bool         `gorm:"not null;default:false" json:"is_staff"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// cnicPattern matches the XXXXX-XXXXXXX-X card format.
var cnicPattern = regexp.MustCompile(`^\d{5}-\d{7}-\d$`)

// ValidCNIC reports whether the value matches the card format.
func ValidCNIC(value string) bool {
	return cnicPattern.MatchString(value)
}
