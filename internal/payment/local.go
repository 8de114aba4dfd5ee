package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// LocalProvider issues intents without talking to a real processor. It mimics
// the id/client-secret/status shape a hosted provider returns, which keeps
// the rest of the flow identical when a real integration is swapped in.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) CreateIntent(_ context.Context, amountCents int64, currency string) (*Intent, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	ref := strings.ReplaceAll(uuid.New().String(), "-", "")
	return &Intent{
		ID:           fmt.Sprintf("pi_%s", ref),
		ClientSecret: fmt.Sprintf("pi_%s_secret_%s", ref, strings.ReplaceAll(uuid.New().String(), "-", "")),
		Status:       "requires_payment_method",
	}, nil
}
