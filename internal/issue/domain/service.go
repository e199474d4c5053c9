package domain

import (
	"context"
	"errors"

	"github.com/trash2cash/platform/pkg/db/pagination"
)

type SubmitReportRequest struct {
	UserID      string `json:"user_id"`
	BinID       string `json:"bin_id"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type ListReportsRequest struct {
	UserID    string
	BinID     string
	Status    string
	PageToken string
	PageSize  int32
}

type ListReportsResponse struct {
	pagination.PageInfo
	Reports []Report `json:"reports"`
}

type SetReportStatusRequest struct {
	ID     string
	Status string
}

type Service interface {
	Submit(context.Context, SubmitReportRequest) (Report, error)
	GetByID(ctx context.Context, id string) (Report, error)
	List(context.Context, ListReportsRequest) (ListReportsResponse, error)
	SetStatus(context.Context, SetReportStatusRequest) (Report, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrNotFound           = errors.New("report_not_found")
)
