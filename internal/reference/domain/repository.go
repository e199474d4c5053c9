package domain

import "context"

type Repository interface {
	ListBillProviders(ctx context.Context, kind string) ([]BillProvider, error)
	ListCharities(ctx context.Context) ([]Charity, error)
}
