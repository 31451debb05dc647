package dealmaker

import (
	"errors"
	"strings"

	domain "invest-checkout/internal/domain/entity/investor"
)

const (
	msgNotConfigured = "DealMaker is not configured. Add API credentials to proceed."
	msgNetwork       = "Network error. Please check your connection and try again."
	msgMissingFields = "Please fill in all required fields (first name, last name, and email)."
	msgRejected      = "The information provided could not be processed. Please check your details and try again."
	msgDuplicate     = "An investor with this email already exists for this deal. Please use a different email address."
	msgAuthFailure   = "Authentication error. Please try again later."
	msgDealNotFound  = "The investment deal could not be found. Please try again later."
	msgUnknown       = "Something went wrong. Please try again or contact support."
	msgUpdateFailed  = "Failed to update investor record"
)

func notConfiguredError() *domain.OnboardingError {
	return &domain.OnboardingError{
		Category: domain.CategoryConfigurationMissing,
		Message:  msgNotConfigured,
	}
}

// classifyCreateFailure maps a failed create-investor exchange to its
// user-facing category. The upstream error text carries an HTTP status
// token ("422", "409", ...) that is matched case-insensitively in
// precedence order, first match wins. The 422 verdict is refined against
// the original request: blank identity fields turn it into a
// missing-fields ask rather than a generic rejection.
func classifyCreateFailure(err error, req domain.CreateRequest) *domain.OnboardingError {
	var te *transportError
	if errors.As(err, &te) {
		return &domain.OnboardingError{
			Category: domain.CategoryNetworkFailure,
			Message:  msgNetwork,
			Err:      err,
		}
	}

	signal := strings.ToLower(err.Error())
	switch {
	case strings.Contains(signal, "422") || strings.Contains(signal, "unprocessable"):
		if req.HasBlankIdentity() {
			return &domain.OnboardingError{
				Category: domain.CategoryValidationMissingFields,
				Message:  msgMissingFields,
				Err:      err,
			}
		}
		return &domain.OnboardingError{
			Category: domain.CategoryValidationRejected,
			Message:  msgRejected,
			Err:      err,
		}
	case strings.Contains(signal, "409") || strings.Contains(signal, "conflict") || strings.Contains(signal, "already"):
		return &domain.OnboardingError{
			Category: domain.CategoryDuplicateInvestor,
			Message:  msgDuplicate,
			Err:      err,
		}
	case strings.Contains(signal, "401") || strings.Contains(signal, "auth"):
		return &domain.OnboardingError{
			Category: domain.CategoryAuthFailure,
			Message:  msgAuthFailure,
			Err:      err,
		}
	case strings.Contains(signal, "404"):
		return &domain.OnboardingError{
			Category: domain.CategoryDealNotFound,
			Message:  msgDealNotFound,
			Err:      err,
		}
	default:
		return &domain.OnboardingError{
			Category: domain.CategoryUnknown,
			Message:  msgUnknown,
			Err:      err,
		}
	}
}
