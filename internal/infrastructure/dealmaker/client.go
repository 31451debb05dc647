package dealmaker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"invest-checkout/internal/config"
	domain "invest-checkout/internal/domain/entity/investor"
	"invest-checkout/internal/domain/interfaces"
)

const (
	requestTimeout = 15 * time.Second
	maxBodyBytes   = 64 << 10
)

// Client talks to the DealMaker investor-management API. It performs one
// request per operation with no internal retries; failed exchanges are
// classified into user-facing categories at this boundary.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	logger  *logrus.Logger
}

var _ interfaces.OnboardingClient = (*Client)(nil)

func NewClient(cfg config.DealMakerConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.APIToken,
		httpc:   &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
}

// Configured reports whether API credentials are present.
func (c *Client) Configured() bool {
	return c.token != "" && c.baseURL != ""
}

type createPayload struct {
	Email           string  `json:"email"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	InvestmentValue float64 `json:"investment_value"`
	AllocationUnit  string  `json:"allocation_unit"`
}

type updatePayload struct {
	CurrentStep string `json:"current_step"`
}

type investorEnvelope struct {
	ID             string `json:"id"`
	SubscriptionID string `json:"subscription_id"`
	State          string `json:"state"`
	CurrentStep    string `json:"current_step"`
}

type accessLinkEnvelope struct {
	AccessLink string `json:"access_link"`
}

// CreateInvestor creates the investor record with an allocation at
// "amount" granularity, then makes a best-effort attempt to fetch the
// one-time payment access link. A failed link fetch is logged and leaves
// PaymentURL empty; it never fails the operation, because the investor
// record already exists upstream.
func (c *Client) CreateInvestor(ctx context.Context, dealID string, req domain.CreateRequest) (*domain.CreateResult, error) {
	if !c.Configured() || dealID == "" {
		return nil, notConfiguredError()
	}

	payload := createPayload{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		InvestmentValue: req.InvestmentAmount.InexactFloat64(),
		AllocationUnit:  "amount",
	}
	var env investorEnvelope
	url := fmt.Sprintf("%s/deals/%s/investors", c.baseURL, dealID)
	if err := c.do(ctx, http.MethodPost, url, payload, &env); err != nil {
		return nil, classifyCreateFailure(err, req)
	}

	result := &domain.CreateResult{
		InvestorID:     env.ID,
		SubscriptionID: env.SubscriptionID,
		State:          env.State,
	}

	var link accessLinkEnvelope
	linkURL := fmt.Sprintf("%s/deals/%s/investors/%s/access_link", c.baseURL, dealID, env.ID)
	if err := c.do(ctx, http.MethodGet, linkURL, nil, &link); err != nil {
		if c.logger != nil {
			c.logger.WithError(err).WithField("investor_id", env.ID).
				Warn("failed to fetch investor access link")
		}
	} else {
		result.PaymentURL = link.AccessLink
	}
	return result, nil
}

// UpdateInvestor advances the investor's onboarding step. Every failure
// collapses into the single update-failed category.
func (c *Client) UpdateInvestor(ctx context.Context, dealID, investorID string, req domain.UpdateRequest) (*domain.UpdateResult, error) {
	if !c.Configured() || dealID == "" {
		return nil, notConfiguredError()
	}

	var env investorEnvelope
	url := fmt.Sprintf("%s/deals/%s/investors/%s", c.baseURL, dealID, investorID)
	if err := c.do(ctx, http.MethodPatch, url, updatePayload{CurrentStep: req.CurrentStep}, &env); err != nil {
		return nil, &domain.OnboardingError{
			Category: domain.CategoryUpdateFailed,
			Message:  msgUpdateFailed,
			Err:      err,
		}
	}

	return &domain.UpdateResult{
		InvestorID:  env.ID,
		State:       env.State,
		CurrentStep: env.CurrentStep,
	}, nil
}

// do performs one JSON exchange. Transport-level failures come back as
// *transportError; non-2xx responses become errors whose text carries the
// upstream status token the classifier matches on.
func (c *Client) do(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &transportError{err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &transportError{err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("dealmaker api error: %d %s: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return "dealmaker request failed: " + e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}
