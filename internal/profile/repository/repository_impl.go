package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/internal/profile/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.UserProfile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_profiles (id, user_id, total_points, total_disposals, total_weight_kg, level, qr_payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.UserID,
		profile.TotalPoints,
		profile.TotalDisposals,
		profile.TotalWeightKg,
		profile.Level,
		profile.QRPayload,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Error
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, total_points, total_disposals, total_weight_kg,
		        plastic_count, paper_count, metal_count, glass_count,
		        level, qr_payload, created_at, updated_at
		 FROM user_profiles WHERE user_id = ?`,
		userID,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == 0 {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) ApplyDisposal(ctx context.Context, db *gorm.DB, userID snowflake.ID, points int64, weightKg float64, category string, now time.Time) error {
	query := `UPDATE user_profiles
		 SET total_points = total_points + ?,
		     total_disposals = total_disposals + 1,
		     total_weight_kg = total_weight_kg + ?,
		     updated_at = ?`
	if column := domain.CounterColumn(category); column != "" {
		query += ", " + column + " = " + column + " + 1"
	}
	query += " WHERE user_id = ?"

	return db.WithContext(ctx).Exec(query, points, weightKg, now, userID).Error
}

func (r *repo) DeductPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID, points int64, now time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE user_profiles
		 SET total_points = total_points - ?, updated_at = ?
		 WHERE user_id = ? AND total_points >= ?`,
		points,
		now,
		userID,
		points,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) AddPoints(ctx context.Context, db *gorm.DB, userID snowflake.ID, points int64, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_profiles
		 SET total_points = total_points + ?, updated_at = ?
		 WHERE user_id = ?`,
		points,
		now,
		userID,
	).Error
}

func (r *repo) SetLevel(ctx context.Context, db *gorm.DB, userID snowflake.ID, level int, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_profiles SET level = ?, updated_at = ? WHERE user_id = ?`,
		level,
		now,
		userID,
	).Error
}

func (r *repo) UpdateQRPayload(ctx context.Context, db *gorm.DB, userID snowflake.ID, payload string, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_profiles SET qr_payload = ?, updated_at = ? WHERE user_id = ?`,
		payload,
		now,
		userID,
	).Error
}
