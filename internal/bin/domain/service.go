package domain

import (
	"context"
	"errors"
	"time"
)

type RegisterBinRequest struct {
	Serial   string
	Location string
	Metadata map[string]interface{}
}

type GetBinRequest struct {
	ID string
}

type ListBinsRequest struct {
	Status string
}

type SetStatusRequest struct {
	ID     string
	Status string
}

// CheckinRequest is a telemetry heartbeat from a deployed bin.
type CheckinRequest struct {
	Serial       string
	Status       string
	FillLevel    int
	BatteryLevel *int
	At           time.Time
}

type Service interface {
	Register(context.Context, RegisterBinRequest) (Bin, error)
	GetByID(context.Context, GetBinRequest) (Bin, error)
	GetBySerial(ctx context.Context, serial string) (Bin, error)
	List(context.Context, ListBinsRequest) ([]Bin, error)
	SetStatus(context.Context, SetStatusRequest) (Bin, error)
	Checkin(context.Context, CheckinRequest) error
}

var (
	ErrInvalidSerial = errors.New("invalid_serial")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrInvalidID     = errors.New("invalid_id")
	ErrBinExists     = errors.New("bin_exists")
	ErrNotFound      = errors.New("not_found")
)
