package wizard

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invest-checkout/internal/domain/entity/investor"
	"invest-checkout/internal/domain/entity/offering"
)

// SubmissionStatus tracks the lifecycle of the final payment submission.
type SubmissionStatus string

const (
	SubmissionNotSubmitted SubmissionStatus = "not-submitted"
	SubmissionInFlight     SubmissionStatus = "in-flight"
	SubmissionSucceeded    SubmissionStatus = "succeeded"
	SubmissionFailed       SubmissionStatus = "failed"
)

// Submission is the outcome of the most recent SubmitPayment attempt.
type Submission struct {
	Status     SubmissionStatus         `json:"status"`
	Category   investor.FailureCategory `json:"category,omitempty"`
	Message    string                   `json:"message,omitempty"`
	PaymentURL string                   `json:"paymentUrl,omitempty"`
	InvestorID string                   `json:"investorId,omitempty"`
}

// ContactForm holds the raw contact-form values plus the touched/error
// bookkeeping that drives validation-message visibility.
type ContactForm struct {
	InvestorType investor.Type                    `json:"investorType"`
	FirstName    string                           `json:"firstName"`
	LastName     string                           `json:"lastName"`
	Email        string                           `json:"email"`
	Touched      map[investor.ContactField]bool   `json:"touched"`
	Errors       map[investor.ContactField]string `json:"errors"`
}

// FullName renders "First Last" for the collapsed-complete summary,
// or a dash placeholder while either part is missing.
func (c ContactForm) FullName() string {
	if c.FirstName == "" || c.LastName == "" {
		return "—"
	}
	return c.FirstName + " " + c.LastName
}

// ContactSummary is the collapsed-complete view of the contact section:
// what the wizard shows once the section folds shut.
type ContactSummary struct {
	TypeLabel     string `json:"typeLabel"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EntityContact bool   `json:"entityContact"`
}

// Summary derives the collapsed view from the current form values.
func (c ContactForm) Summary() ContactSummary {
	return ContactSummary{
		TypeLabel:     c.InvestorType.Label(),
		Name:          c.FullName(),
		Email:         c.Email,
		EntityContact: c.InvestorType.EntityContact(),
	}
}

// Session is the mutable aggregate for one wizard run. Amount and Shares
// are kept mutually consistent through the investment calculator; the
// completed set only ever grows. Synchronization is owned by the
// application service, not the entity.
type Session struct {
	ID             uuid.UUID            `json:"id"`
	Amount         decimal.Decimal      `json:"amount"`
	Shares         int64                `json:"shares"`
	Calculation    offering.Calculation `json:"calculation"`
	Expanded       Section              `json:"expandedSection"`
	Completed      map[Section]bool     `json:"completedSections"`
	Contact        ContactForm          `json:"contact"`
	ContactSummary ContactSummary       `json:"contactSummary"`
	Submission     Submission           `json:"submission"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// NewSession starts a wizard run on the investment section.
func NewSession(id uuid.UUID, amount decimal.Decimal) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        id,
		Amount:    amount,
		Expanded:  SectionInvestment,
		Completed: map[Section]bool{},
		Contact: ContactForm{
			InvestorType: investor.TypeIndividual,
			Touched:      map[investor.ContactField]bool{},
			Errors:       map[investor.ContactField]string{},
		},
		Submission: Submission{Status: SubmissionNotSubmitted},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.ContactSummary = s.Contact.Summary()
	return s
}

// MarkComplete adds the section to the completed set. Completion is
// monotonic: sections are never un-completed within a session.
func (s *Session) MarkComplete(sec Section) {
	if !s.Completed[sec] {
		s.Completed[sec] = true
	}
}

// Clone returns a deep copy safe to hand to callers after the owning
// service releases its lock. The contact summary is re-derived so
// snapshots always carry the current collapsed view.
func (s *Session) Clone() *Session {
	cp := *s
	cp.ContactSummary = s.Contact.Summary()
	cp.Completed = make(map[Section]bool, len(s.Completed))
	for k, v := range s.Completed {
		cp.Completed[k] = v
	}
	cp.Contact.Touched = make(map[investor.ContactField]bool, len(s.Contact.Touched))
	for k, v := range s.Contact.Touched {
		cp.Contact.Touched[k] = v
	}
	cp.Contact.Errors = make(map[investor.ContactField]string, len(s.Contact.Errors))
	for k, v := range s.Contact.Errors {
		cp.Contact.Errors[k] = v
	}
	return &cp
}
