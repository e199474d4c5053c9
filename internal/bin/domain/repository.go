package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bin *Bin) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bin, error)
	FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*Bin, error)
	List(ctx context.Context, db *gorm.DB, filter ListBinFilter) ([]*Bin, error)
	UpdateTelemetry(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, fillLevel int, batteryLevel *int, seenAt time.Time) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, now time.Time) error
}

type ListBinFilter struct {
	Status string
}
