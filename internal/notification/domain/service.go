package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/trash2cash/platform/pkg/db/pagination"
)

type NotifyRequest struct {
	UserID snowflake.ID
	Title  string
	Body   string
	Kind   string
}

type ListNotificationsRequest struct {
	UserID     string
	UnreadOnly bool
	PageToken  string
	PageSize   int32
}

type ListNotificationsResponse struct {
	pagination.PageInfo
	Notifications []Notification `json:"notifications"`
}

type Service interface {
	Notify(context.Context, NotifyRequest) (Notification, error)
	ListByUser(context.Context, ListNotificationsRequest) (ListNotificationsResponse, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrNotFound     = errors.New("notification_not_found")
)
