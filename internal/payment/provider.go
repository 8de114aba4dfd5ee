// Package payment abstracts the external payment processor. The order
// composer only ever sees the Provider interface and the opaque intent it
// returns.
package payment

import (
	"context"
	"errors"
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

type Provider interface {
	// CreateIntent authorizes a charge for the given amount in minor
	// currency units (integer cents).
	CreateIntent(ctx context.Context, amountCents int64, currency string) (*Intent, error)
}

var ErrInvalidAmount = errors.New("payment amount must be positive")
