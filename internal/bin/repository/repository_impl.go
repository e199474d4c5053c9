package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/bin/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bin *domain.Bin) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bins (id, serial, location, status, fill_level, battery_level, last_seen_at, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bin.ID,
		bin.Serial,
		bin.Location,
		bin.Status,
		bin.FillLevel,
		bin.BatteryLevel,
		bin.LastSeenAt,
		bin.Metadata,
		bin.CreatedAt,
		bin.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bin, error) {
	var bin domain.Bin
	err := db.WithContext(ctx).
		Model(&domain.Bin{}).
		Where("id = ?", id).
		Take(&bin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &bin, nil
}

func (r *repo) FindBySerial(ctx context.Context, db *gorm.DB, serial string) (*domain.Bin, error) {
	var bin domain.Bin
	err := db.WithContext(ctx).
		Model(&domain.Bin{}).
		Where("serial = ?", serial).
		Take(&bin).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &bin, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListBinFilter) ([]*domain.Bin, error) {
	var bins []*domain.Bin
	stmt := db.WithContext(ctx).Model(&domain.Bin{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	err := stmt.Order("serial asc").Find(&bins).Error
	if err != nil {
		return nil, err
	}
	return bins, nil
}

func (r *repo) UpdateTelemetry(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, fillLevel int, batteryLevel *int, seenAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bins
		 SET status = ?, fill_level = ?, battery_level = ?, last_seen_at = ?, updated_at = ?
		 WHERE id = ?`,
		status,
		fillLevel,
		batteryLevel,
		seenAt,
		seenAt,
		id,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE bins SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		now,
		id,
	).Error
}
