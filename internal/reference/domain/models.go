package domain

import "time"

const (
	ProviderKindElectricity = "electricity"
	ProviderKindGas         = "gas"
)

// BillProvider is a utility company whose bills can be paid with points.
type BillProvider struct {
	Code      string    `json:"code" gorm:"type:text;primaryKey;column:code"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Kind      string    `json:"kind" gorm:"type:text;not null"`
	IsActive  bool      `json:"is_active,omitempty" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (BillProvider) TableName() string { return "bill_providers" }

// Charity is a donation target for the charity redemption category.
type Charity struct {
	Code      string    `json:"code" gorm:"type:text;primaryKey;column:code"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	IsActive  bool      `json:"is_active,omitempty" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at,omitempty" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Charity) TableName() string { return "charities" }
