package reference

import (
	"context"
	"strings"

	"github.com/trash2cash/platform/internal/reference/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) ListBillProviders(ctx context.Context, kind string) ([]domain.BillProvider, error) {
	stmt := r.db.WithContext(ctx).
		Model(&domain.BillProvider{}).
		Where("is_active = ?", true).
		Order("name")

	if kind = strings.TrimSpace(strings.ToLower(kind)); kind != "" {
		stmt = stmt.Where("kind = ?", kind)
	}

	var providers []domain.BillProvider
	if err := stmt.Find(&providers).Error; err != nil {
		return nil, err
	}
	return providers, nil
}

func (r *repository) ListCharities(ctx context.Context) ([]domain.Charity, error) {
	var charities []domain.Charity
	err := r.db.WithContext(ctx).
		Model(&domain.Charity{}).
		Where("is_active = ?", true).
		Order("name").
		Find(&charities).Error
	if err != nil {
		return nil, err
	}
	return charities, nil
}
