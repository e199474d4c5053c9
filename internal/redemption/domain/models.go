package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

const (
	CategoryElectricity = "electricity"
	CategoryGas         = "gas"
	CategoryVoucher     = "voucher"
	CategoryCharity     = "charity"
)

// ValidCategory reports whether the value is a known redemption category.
func ValidCategory(category string) bool {
	switch category {
	case CategoryElectricity, CategoryGas, CategoryVoucher, CategoryCharity:
		return true
	default:
		return false
	}
}

// Redemption is one cash-out request. Points are deducted up front when the
// request is submitted; a rejection refunds them. Every request gets a claim
// code regardless of category.
type Redemption struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID        snowflake.ID `gorm:"not null;index:ix_redemption_requests_user" json:"user_id"`
	Category      string       `gorm:"not null;default:voucher" json:"category"`
	Points        int64        `gorm:"not null" json:"points"`
	AmountPKR     float64      `gorm:"column:amount_pkr;not null" json:"amount_pkr"`
	VoucherCode   string       `gorm:"not null;uniqueIndex:ux_redemption_requests_voucher" json:"voucher_code"`
	BillProvider  string       `json:"bill_provider,omitempty"`
	BillReference string       `json:"bill_reference,omitempty"`
	CharityName   string       `json:"charity_name,omitempty"`
	AdminNotes    string       `json:"admin_notes,omitempty"`
	Status        string       `gorm:"not null;default:pending;index:ix_redemption_requests_status" json:"status"`
	ExpiresAt     time.Time    `gorm:"not null" json:"expires_at"`
	DecidedAt     *time.Time   `json:"decided_at,omitempty"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Redemption) TableName() string {
	return "redemption_requests"
}

// transitions lists the allowed status moves.
var transitions = map[string]map[string]bool{
	StatusPending: {
		StatusApproved: true,
		StatusRejected: true,
	},
	StatusApproved: {
		StatusCompleted: true,
	},
}

// CanTransition reports whether a redemption may move between two statuses.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}
