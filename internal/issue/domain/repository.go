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
	BinID  snowflake.ID
	Status string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, report *Report) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Report, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Report, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, now time.Time) error
}
