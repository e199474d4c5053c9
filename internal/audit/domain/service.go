package domain

import (
	"context"
	"errors"

	"github.com/trash2cash/platform/pkg/db/pagination"
)

type RecordRequest struct {
	ActorType  string
	ActorID    string
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]any
}

type ListAuditLogsRequest struct {
	Action     string
	TargetType string
	TargetID   string
	ActorType  string
	PageToken  string
	PageSize   int32
}

type ListAuditLogsResponse struct {
	pagination.PageInfo
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	// Record writes one audit entry. Failures are returned but callers on
	// the request path usually just log them.
	Record(context.Context, RecordRequest) error

	List(context.Context, ListAuditLogsRequest) (ListAuditLogsResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
