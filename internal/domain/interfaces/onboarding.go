package interfaces

import (
	"context"

	domain "invest-checkout/internal/domain/entity/investor"
)

// OnboardingClient is the request/response port to the external
// investor-management service. Implementations never retry; callers
// decide whether the user may resubmit.
type OnboardingClient interface {
	Configured() bool
	CreateInvestor(ctx context.Context, dealID string, req domain.CreateRequest) (*domain.CreateResult, error)
	UpdateInvestor(ctx context.Context, dealID, investorID string, req domain.UpdateRequest) (*domain.UpdateResult, error)
}
