package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"invest-checkout/internal/application/service/calculation"
	domaininvestor "invest-checkout/internal/domain/entity/investor"
	"invest-checkout/internal/domain/entity/offering"
	domainwizard "invest-checkout/internal/domain/entity/wizard"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionClosed      = errors.New("session closed")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrNotOnPayment       = errors.New("submission only allowed from the payment section")
	ErrAmountBelowMinimum = errors.New("amount below minimum investment")
	ErrAmountAboveMaximum = errors.New("amount above maximum investment")
)

// Onboarder is the slice of the onboarding service the wizard needs for
// final submission.
type Onboarder interface {
	CreateInvestor(ctx context.Context, req domaininvestor.CreateRequest) (*domaininvestor.CreateResult, error)
}

// session wraps the domain aggregate with the synchronization state the
// service owns: a per-session lock, a generation counter for discarding
// late submission responses, and idle tracking for the reaper.
type session struct {
	mu         sync.Mutex
	gen        uint64
	cancel     context.CancelFunc
	lastActive time.Time
	state      *domainwizard.Session
}

// Service owns all live wizard sessions and their transition rules.
// Each session is independent; the registry map is the only state shared
// across sessions.
type Service struct {
	offering  *offering.Offering
	onboarder Onboarder
	logger    *logrus.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

func NewService(off *offering.Offering, onboarder Onboarder, logger *logrus.Logger) *Service {
	return &Service{
		offering:  off,
		onboarder: onboarder,
		logger:    logger,
		sessions:  make(map[uuid.UUID]*session),
	}
}

// Offering exposes the immutable offering terms the service was built with.
func (s *Service) Offering() *offering.Offering {
	return s.offering
}

// CreateSession starts a wizard run seeded with an initial amount and
// returns its first snapshot.
func (s *Service) CreateSession(initialAmount decimal.Decimal) *domainwizard.Session {
	if initialAmount.IsNegative() {
		initialAmount = decimal.Zero
	}
	st := domainwizard.NewSession(uuid.New(), initialAmount)
	s.recalculate(st)

	h := &session{state: st, lastActive: time.Now()}
	s.mu.Lock()
	s.sessions[st.ID] = h
	s.mu.Unlock()

	return st.Clone()
}

// Get returns a snapshot of the session.
func (s *Service) Get(id uuid.UUID) (*domainwizard.Session, error) {
	return s.withSession(id, func(*domainwizard.Session) error { return nil })
}

// EditAmount sets a new investment amount and recomputes the paired share
// count. Section completion and expansion are untouched.
func (s *Service) EditAmount(id uuid.UUID, amount decimal.Decimal) (*domainwizard.Session, error) {
	return s.withSession(id, func(st *domainwizard.Session) error {
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		st.Amount = amount
		s.recalculate(st)
		return nil
	})
}

// EditShares sets a new share count and regenerates the amount from it.
func (s *Service) EditShares(id uuid.UUID, shares int64) (*domainwizard.Session, error) {
	return s.withSession(id, func(st *domainwizard.Session) error {
		if shares < 0 {
			shares = 0
		}
		st.Amount = calculation.SharesToAmount(shares, s.offering)
		s.recalculate(st)
		st.Shares = shares
		return nil
	})
}

// SelectSection expands a section for interaction. Navigation is free in
// both directions; completion gating applies to Continue, not viewing.
func (s *Service) SelectSection(id uuid.UUID, sec domainwizard.Section) (*domainwizard.Session, error) {
	return s.withSession(id, func(st *domainwizard.Session) error {
		st.Expanded = sec
		return nil
	})
}

// ContinueSection runs the guard for a section and, when it passes, marks
// the section complete and expands the next one. A failed contact guard
// surfaces field errors in the snapshot instead of advancing. The payment
// section is excluded: it completes only through Submit.
func (s *Service) ContinueSection(id uuid.UUID, sec domainwizard.Section) (*domainwizard.Session, error) {
	return s.withSession(id, func(st *domainwizard.Session) error {
		switch sec {
		case domainwizard.SectionInvestment:
			if st.Amount.LessThan(s.offering.MinInvestment) {
				return fmt.Errorf("%w: minimum investment amount is %s",
					ErrAmountBelowMinimum, calculation.FormatCurrency(s.offering.MinInvestment, 2))
			}
			if s.offering.MaxInvestment != nil && st.Amount.GreaterThan(*s.offering.MaxInvestment) {
				return fmt.Errorf("%w: maximum investment amount is %s",
					ErrAmountAboveMaximum, calculation.FormatCurrency(*s.offering.MaxInvestment, 0))
			}
		case domainwizard.SectionContact:
			if !s.validateContact(st) {
				return nil
			}
		case domainwizard.SectionPayment:
			// The terminal section completes only through a successful
			// submission; Continue has nothing to advance to.
			return nil
		}

		st.MarkComplete(sec)
		if next, ok := sec.Next(); ok {
			st.Expanded = next
		}
		return nil
	})
}

// EditContactField updates a raw contact value. A field that has been
// blurred before re-validates on every edit; untouched fields stay quiet.
func (s *Service) EditContactField(id uuid.UUID, field domaininvestor.ContactField, value string) (*domainwizard.Session, error) {
	return s.withSession(id, func(st *domainwizard.Session) error {
		if field == domaininvestor.FieldInvestorType {
			t, err := domaininvestor.NewType(value)
			if err != nil {
				return err
			}
			st.Contact.InvestorType = t
			return nil
		}

		setContactValue(st, field, value)
		if st.Contact.Touched[field] {
			s.validateField(st, field)
		}
		return nil
	})
}

// BlurContactField marks the field touched and validates it immediately,
// surfacing an error even when the value is unchanged.
func (s *Service) BlurContactField(id uuid.UUID, field domaininvestor.ContactField) (*domainwizard.Session, error) {
	return s.withSession(id, func(st *domainwizard.Session) error {
		if field == domaininvestor.FieldInvestorType {
			return nil
		}
		st.Contact.Touched[field] = true
		s.validateField(st, field)
		return nil
	})
}

// Abandon tears the session down. A submission still on the wire is
// cancelled and any late response is discarded rather than applied.
func (s *Service) Abandon(id uuid.UUID) error {
	s.mu.Lock()
	h, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	h.mu.Lock()
	h.gen++
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.mu.Unlock()
	return nil
}

// Reap evicts sessions idle for longer than maxIdle, skipping any with a
// submission still in flight. Returns the number of evicted sessions.
func (s *Service) Reap(maxIdle time.Duration) int {
	s.mu.RLock()
	candidates := make(map[uuid.UUID]*session, len(s.sessions))
	for id, h := range s.sessions {
		candidates[id] = h
	}
	s.mu.RUnlock()

	reaped := 0
	for id, h := range candidates {
		h.mu.Lock()
		idle := time.Since(h.lastActive) > maxIdle &&
			h.state.Submission.Status != domainwizard.SubmissionInFlight
		if idle {
			h.gen++
		}
		h.mu.Unlock()

		if idle {
			s.mu.Lock()
			delete(s.sessions, id)
			s.mu.Unlock()
			reaped++
		}
	}

	if reaped > 0 && s.logger != nil {
		s.logger.WithField("sessions", reaped).Info("reaped idle wizard sessions")
	}
	return reaped
}

func (s *Service) lookup(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	h, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return h, nil
}

func (s *Service) withSession(id uuid.UUID, fn func(*domainwizard.Session) error) (*domainwizard.Session, error) {
	h, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := fn(h.state); err != nil {
		return nil, err
	}
	now := time.Now()
	h.lastActive = now
	h.state.UpdatedAt = now.UTC()
	return h.state.Clone(), nil
}

// recalculate re-derives the calculation and base share count from the
// current amount. Derived state is never cached beyond the current input.
func (s *Service) recalculate(st *domainwizard.Session) {
	st.Calculation = calculation.Calculate(st.Amount, s.offering)
	st.Shares = st.Calculation.BaseShares
}

func setContactValue(st *domainwizard.Session, field domaininvestor.ContactField, value string) {
	switch field {
	case domaininvestor.FieldFirstName:
		st.Contact.FirstName = value
	case domaininvestor.FieldLastName:
		st.Contact.LastName = value
	case domaininvestor.FieldEmail:
		st.Contact.Email = value
	}
}
