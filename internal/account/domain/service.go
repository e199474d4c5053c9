package domain

import (
	"context"
	"errors"
)

type SignupRequest struct {
	Username string
	CNIC     string
	Email    string
	Password string
}

type LoginRequest struct {
	Username string
	Password string
}

type GetUserRequest struct {
	ID string
}

type Service interface {
	Signup(context.Context, SignupRequest) (User, error)
	Login(context.Context, LoginRequest) (User, error)
	GetByID(context.Context, GetUserRequest) (User, error)
	FindByCNIC(ctx context.Context, cnic string) (User, error)
	// AuthenticateCNIC verifies card credentials carried in keyed QR tokens.
	AuthenticateCNIC(ctx context.Context, cnic, password string) (User, error)
}

var (
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidCNIC        = errors.New("invalid_cnic")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidID          = errors.New("invalid_id")
	ErrUserExists         = errors.New("user_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrNotFound           = errors.New("not_found")
)
