package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"invest-checkout/internal/application/service/calculation"
	domaininvestor "invest-checkout/internal/domain/entity/investor"
	domainwizard "invest-checkout/internal/domain/entity/wizard"
)

const msgSubmitFallback = "Failed to complete investment. Please try again."

// Submit performs the final payment submission for a session: one
// create-investor exchange, at most one in flight per session. The
// session lock is released while the request is on the wire; the result
// is applied only if the session generation is unchanged, so a response
// arriving after Abandon is discarded instead of mutating a torn-down
// session. Failures keep the payment section interactive for resubmission.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*domainwizard.Session, error) {
	h, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	st := h.state
	if st.Expanded != domainwizard.SectionPayment {
		h.mu.Unlock()
		return nil, ErrNotOnPayment
	}
	if st.Submission.Status == domainwizard.SubmissionInFlight {
		h.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}

	st.Submission = domainwizard.Submission{Status: domainwizard.SubmissionInFlight}
	gen := h.gen
	req := domaininvestor.CreateRequest{
		Email:            st.Contact.Email,
		FirstName:        st.Contact.FirstName,
		LastName:         st.Contact.LastName,
		InvestmentAmount: st.Amount,
	}
	callCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.mu.Unlock()

	res, callErr := s.onboarder.CreateInvestor(callCtx, req)
	cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gen != gen {
		return nil, ErrSessionClosed
	}
	h.cancel = nil

	if callErr != nil {
		category := domaininvestor.CategoryUnknown
		message := msgSubmitFallback
		var oe *domaininvestor.OnboardingError
		if errors.As(callErr, &oe) {
			category = oe.Category
			message = oe.Message
		}
		if s.logger != nil {
			s.logger.WithError(callErr).WithFields(logrus.Fields{
				"session":  st.ID,
				"category": category,
			}).Warn("investor submission failed")
		}
		st.Submission = domainwizard.Submission{
			Status:   domainwizard.SubmissionFailed,
			Category: category,
			Message:  message,
		}
		return st.Clone(), nil
	}

	st.Submission = domainwizard.Submission{
		Status:     domainwizard.SubmissionSucceeded,
		PaymentURL: res.PaymentURL,
		InvestorID: res.InvestorID,
	}
	if res.PaymentURL == "" {
		st.Submission.Message = fmt.Sprintf(
			"Your investment of %s has been successfully recorded. You will receive an email with payment instructions shortly.",
			calculation.FormatCurrency(st.Amount, 2))
	}
	st.MarkComplete(domainwizard.SectionPayment)
	return st.Clone(), nil
}
