package domain

import (
	"context"
	"errors"

	accountdomain "github.com/trash2cash/platform/internal/account/domain"
)

type GetProfileRequest struct {
	UserID string
}

type Service interface {
	// EnsureForUser returns the user's profile, creating it with a fresh QR
	// payload on first touch.
	EnsureForUser(ctx context.Context, user accountdomain.User) (UserProfile, error)
	GetByUser(context.Context, GetProfileRequest) (UserProfile, error)
	// RegenerateQR rewrites the stored QR payload from current account data.
	RegenerateQR(ctx context.Context, user accountdomain.User) (UserProfile, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
	ErrNotFound  = errors.New("not_found")
)
