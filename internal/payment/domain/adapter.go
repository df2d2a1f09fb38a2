package domain

import (
	"context"
	"errors"
)

type ChargeRequest struct {
	TransactionID string
	Phone         string
	Amount        int64
}

type ChargeResult struct {
	Receipt string
}

// Adapter executes a charge against one payment provider. A declined charge
// is ErrChargeDeclined; anything else is a transport or provider fault.
type Adapter interface {
	Provider() string
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

var (
	ErrChargeDeclined   = errors.New("charge_declined")
	ErrProviderNotFound = errors.New("provider_not_found")
)
