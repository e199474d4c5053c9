package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *UserProfile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*UserProfile, error)

	// ApplyDisposal increments the lifetime counters in place so concurrent
	// disposals never lose an update. The category picks which material
	// counter moves.
	ApplyDisposal(ctx context.Context, db *gorm.DB, userID snowflake.ID, points int64, weightKg float64, category string, now time.Time) error

	// DeductPoints conditionally spends points. Returns false when the
	// balance is insufficient.
	DeductPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID, points int64, now time.Time) (bool, error)

	AddPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID, points int64, now time.Time) error
	SetLevel(ctx context.Context, db *gorm.DB, userID snowflake.ID, level int, now time.Time) error
	UpdateQRPayload(ctx context.Context, db *gorm.DB, userID snowflake.ID, payload string, now time.Time) error
}
