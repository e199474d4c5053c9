package domain

import (
	"context"
	"errors"

	"github.com/trash2cash/platform/pkg/db/pagination"
)

type SubmitRequest struct {
	UserID        string `json:"user_id"`
	Category      string `json:"category"`
	Points        int64  `json:"points"`
	BillProvider  string `json:"bill_provider,omitempty"`
	BillReference string `json:"bill_reference,omitempty"`
	CharityName   string `json:"charity_name,omitempty"`
}

type GetRedemptionRequest struct {
	ID string
}

type ListRedemptionsRequest struct {
	UserID    string
	Status    string
	PageToken string
	PageSize  int32
}

type ListRedemptionsResponse struct {
	pagination.PageInfo
	Redemptions []Redemption `json:"redemptions"`
}

type Service interface {
	// Submit deducts the points immediately and issues a pending voucher.
	Submit(context.Context, SubmitRequest) (Redemption, error)

	GetByID(context.Context, GetRedemptionRequest) (Redemption, error)
	List(context.Context, ListRedemptionsRequest) (ListRedemptionsResponse, error)

	Approve(ctx context.Context, id, note string) (Redemption, error)

	// Reject refunds the deducted points when refunds are enabled.
	Reject(ctx context.Context, id, note string) (Redemption, error)

	Complete(ctx context.Context, id, note string) (Redemption, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidPoints      = errors.New("invalid_points")
	ErrBelowMinimum       = errors.New("below_minimum_points")
	ErrInsufficientPoints = errors.New("insufficient_points")
	ErrMissingBillDetails = errors.New("missing_bill_details")
	ErrMissingCharityName = errors.New("missing_charity_name")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidTransition  = errors.New("invalid_transition")
	ErrNotFound           = errors.New("redemption_not_found")
)
