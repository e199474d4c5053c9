package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	UserID snowflake.ID
	Status string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, redemption *Redemption) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Redemption, error)
	FindByVoucher(ctx context.Context, db *gorm.DB, voucherCode string) (*Redemption, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Redemption, error)

	// TransitionStatus moves a redemption between statuses only when it is
	// still in the expected one. Returns false when the row changed under us.
	TransitionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to, adminNotes string, decidedAt, completedAt *time.Time, now time.Time) (bool, error)
}
