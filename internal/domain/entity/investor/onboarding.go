package investor

import "github.com/shopspring/decimal"

// CreateRequest carries the data needed to create an investor record
// at the external service. Blank identity fields are passed through so
// the upstream validation verdict can be refined against them.
type CreateRequest struct {
	Email            string
	FirstName        string
	LastName         string
	InvestmentAmount decimal.Decimal
}

// HasBlankIdentity reports whether any required identity field is empty.
func (r CreateRequest) HasBlankIdentity() bool {
	return r.Email == "" || r.FirstName == "" || r.LastName == ""
}

// CreateResult is the success envelope of a create-investor exchange.
// PaymentURL is empty when the one-time access link could not be fetched,
// which is not an error condition.
type CreateResult struct {
	InvestorID     string
	SubscriptionID string
	State          string
	PaymentURL     string
}

// UpdateRequest advances the investor's onboarding step upstream.
type UpdateRequest struct {
	CurrentStep string
}

// UpdateResult is the success envelope of an update-investor exchange.
type UpdateResult struct {
	InvestorID  string
	State       string
	CurrentStep string
}

// FailureCategory is the classified cause of a failed onboarding exchange.
type FailureCategory string

const (
	CategoryConfigurationMissing    FailureCategory = "configuration-missing"
	CategoryValidationMissingFields FailureCategory = "validation-missing-fields"
	CategoryValidationRejected      FailureCategory = "validation-rejected"
	CategoryDuplicateInvestor       FailureCategory = "duplicate-investor"
	CategoryAuthFailure             FailureCategory = "auth-failure"
	CategoryDealNotFound            FailureCategory = "deal-not-found"
	CategoryUnknown                 FailureCategory = "unknown"
	CategoryUpdateFailed            FailureCategory = "update-failed"
	CategoryNetworkFailure          FailureCategory = "network-failure"
)

// OnboardingError pairs a failure category with its user-facing message.
// The underlying upstream error is retained for logging only.
type OnboardingError struct {
	Category FailureCategory
	Message  string
	Err      error
}

func (e *OnboardingError) Error() string {
	if e.Err != nil {
		return string(e.Category) + ": " + e.Err.Error()
	}
	return string(e.Category) + ": " + e.Message
}

func (e *OnboardingError) Unwrap() error {
	return e.Err
}
