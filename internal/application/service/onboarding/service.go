package onboarding

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	domain "invest-checkout/internal/domain/entity/investor"
	"invest-checkout/internal/domain/interfaces"
)

const (
	eventInvestorCreated     = "investor.created"
	eventInvestorStepUpdated = "investor.step_updated"

	publishTimeout = 5 * time.Second
)

// Service fronts the onboarding client for a single deal and emits
// lifecycle events after successful exchanges. Event publishing is
// best-effort and never changes an operation's outcome.
type Service struct {
	client interfaces.OnboardingClient
	events interfaces.EventPublisher
	dealID string
	logger *logrus.Logger
}

func NewService(client interfaces.OnboardingClient, events interfaces.EventPublisher, dealID string, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		events: events,
		dealID: dealID,
		logger: logger,
	}
}

// Configured reports whether both credentials and a deal identifier are
// present. When false, every operation short-circuits before any
// network call.
func (s *Service) Configured() bool {
	return s.client.Configured() && s.dealID != ""
}

type investorCreatedEvent struct {
	InvestorID     string          `json:"investor_id"`
	SubscriptionID string          `json:"subscription_id"`
	State          string          `json:"state"`
	Email          string          `json:"email"`
	Amount         decimal.Decimal `json:"amount"`
	CreatedAt      time.Time       `json:"created_at"`
}

type investorStepUpdatedEvent struct {
	InvestorID  string    `json:"investor_id"`
	State       string    `json:"state"`
	CurrentStep string    `json:"current_step"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateInvestor creates the investor record upstream and, on success,
// publishes an investor.created event.
func (s *Service) CreateInvestor(ctx context.Context, req domain.CreateRequest) (*domain.CreateResult, error) {
	res, err := s.client.CreateInvestor(ctx, s.dealID, req)
	if err != nil {
		return nil, err
	}

	s.publish(eventInvestorCreated, investorCreatedEvent{
		InvestorID:     res.InvestorID,
		SubscriptionID: res.SubscriptionID,
		State:          res.State,
		Email:          req.Email,
		Amount:         req.InvestmentAmount,
		CreatedAt:      time.Now().UTC(),
	})
	return res, nil
}

// UpdateInvestor advances the investor's onboarding step upstream and,
// on success, publishes an investor.step_updated event.
func (s *Service) UpdateInvestor(ctx context.Context, investorID string, req domain.UpdateRequest) (*domain.UpdateResult, error) {
	res, err := s.client.UpdateInvestor(ctx, s.dealID, investorID, req)
	if err != nil {
		return nil, err
	}

	s.publish(eventInvestorStepUpdated, investorStepUpdatedEvent{
		InvestorID:  res.InvestorID,
		State:       res.State,
		CurrentStep: res.CurrentStep,
		UpdatedAt:   time.Now().UTC(),
	})
	return res, nil
}

func (s *Service) publish(event string, payload any) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, event, payload); err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("event", event).Warn("publish investor event")
	}
}
