package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	apponboarding "invest-checkout/internal/application/service/onboarding"
	appwizard "invest-checkout/internal/application/service/wizard"
	"invest-checkout/internal/config"
	domaininvestor "invest-checkout/internal/domain/entity/investor"
	"invest-checkout/internal/domain/entity/offering"
	domainwizard "invest-checkout/internal/domain/entity/wizard"
	"invest-checkout/internal/infrastructure/dealmaker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubClient struct {
	configured bool
	res        *domaininvestor.CreateResult
	err        error
	updRes     *domaininvestor.UpdateResult
	updErr     error
}

func (s *stubClient) Configured() bool { return s.configured }

func (s *stubClient) CreateInvestor(ctx context.Context, dealID string, req domaininvestor.CreateRequest) (*domaininvestor.CreateResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

func (s *stubClient) UpdateInvestor(ctx context.Context, dealID, investorID string, req domaininvestor.UpdateRequest) (*domaininvestor.UpdateResult, error) {
	if s.updErr != nil {
		return nil, s.updErr
	}
	return s.updRes, nil
}

func testHandler(t *testing.T, client *stubClient) *Handler {
	t.Helper()
	tiers, err := offering.ParseBonusTiers("1000:5,5000:10")
	if err != nil {
		t.Fatalf("parse tiers: %v", err)
	}
	off := &offering.Offering{
		SharePrice:    decimal.NewFromInt(1),
		MinInvestment: decimal.NewFromInt(500),
		SecurityType:  "Common Stock",
		BonusTiers:    tiers,
	}
	onboarding := apponboarding.NewService(client, nil, "deal_1", nil)
	wizard := appwizard.NewService(off, onboarding, nil)
	return NewHandler(wizard, onboarding, nil, 0, nil)
}

func doJSON(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateInvestorUnconfiguredReturns503(t *testing.T) {
	// A real client with no credentials exercises the short-circuit path.
	client := dealmaker.NewClient(config.DealMakerConfig{}, nil)
	onboarding := apponboarding.NewService(client, nil, "", nil)
	off := &offering.Offering{SharePrice: decimal.NewFromInt(1), MinInvestment: decimal.NewFromInt(500)}
	wizard := appwizard.NewService(off, onboarding, nil)
	h := NewHandler(wizard, onboarding, nil, 0, nil)

	w := doJSON(t, h, http.MethodPost, "/api/v1/investor",
		`{"email":"jane@example.com","firstName":"Jane","lastName":"Doe","investmentAmount":1000}`)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "DealMaker is not configured. Add API credentials to proceed." {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestCreateInvestorNullPaymentURL(t *testing.T) {
	h := testHandler(t, &stubClient{
		configured: true,
		res:        &domaininvestor.CreateResult{InvestorID: "inv_1", SubscriptionID: "sub_1", State: "draft"},
	})

	w := doJSON(t, h, http.MethodPost, "/api/v1/investor",
		`{"email":"jane@example.com","firstName":"Jane","lastName":"Doe","investmentAmount":1000}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["investorId"] != "inv_1" {
		t.Errorf("investorId = %v", resp["investorId"])
	}
	if url, ok := resp["paymentUrl"]; !ok || url != nil {
		t.Errorf("paymentUrl = %v, want explicit null", url)
	}
}

func TestCreateInvestorRejectsBadType(t *testing.T) {
	h := testHandler(t, &stubClient{configured: true})
	w := doJSON(t, h, http.MethodPost, "/api/v1/investor",
		`{"email":"jane@example.com","firstName":"Jane","lastName":"Doe","investorType":"syndicate"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestUpdateInvestorResponseEnvelope(t *testing.T) {
	h := testHandler(t, &stubClient{
		configured: true,
		updRes:     &domaininvestor.UpdateResult{InvestorID: "inv_1", State: "draft", CurrentStep: "payment"},
	})

	w := doJSON(t, h, http.MethodPatch, "/api/v1/investor", `{"investorId":"inv_1","currentStep":"payment"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var rec domaininvestor.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ID != "inv_1" || rec.State != "draft" || rec.CurrentStep != "payment" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestUpdateInvestorRequiresID(t *testing.T) {
	h := testHandler(t, &stubClient{configured: true})
	w := doJSON(t, h, http.MethodPatch, "/api/v1/investor", `{"currentStep":"payment"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCacheFailureIsLoggedNotFatal(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	// Nothing listens here, so both the cache read and write fail.
	cache := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})

	tiers, err := offering.ParseBonusTiers("1000:5")
	if err != nil {
		t.Fatalf("parse tiers: %v", err)
	}
	off := &offering.Offering{SharePrice: decimal.NewFromInt(1), MinInvestment: decimal.NewFromInt(500), BonusTiers: tiers}
	onboarding := apponboarding.NewService(&stubClient{}, nil, "deal_1", nil)
	wizard := appwizard.NewService(off, onboarding, nil)
	h := NewHandler(wizard, onboarding, cache, time.Minute, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/offering", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning for the failed cache write, got %+v", entry)
	}
}

func TestGetQuote(t *testing.T) {
	h := testHandler(t, &stubClient{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/offering/quote?amount=%241%2C000", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Calculation     offering.Calculation `json:"calculation"`
		FormattedAmount string               `json:"formattedAmount"`
		FormattedShares string               `json:"formattedShares"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Calculation.BaseShares != 1000 || resp.Calculation.BonusShares != 50 {
		t.Errorf("unexpected calculation: %+v", resp.Calculation)
	}
	if resp.FormattedAmount != "$1,000.00" {
		t.Errorf("formattedAmount = %q", resp.FormattedAmount)
	}
	if resp.FormattedShares != "1,050" {
		t.Errorf("formattedShares = %q", resp.FormattedShares)
	}
}

func TestWizardSessionFlow(t *testing.T) {
	h := testHandler(t, &stubClient{
		configured: true,
		res: &domaininvestor.CreateResult{
			InvestorID: "inv_1",
			State:      "draft",
			PaymentURL: "https://pay.example/otl",
		},
	})

	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions", `{"initialAmount":499}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create session: %d; body %s", w.Code, w.Body.String())
	}
	var snap domainwizard.Session
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	base := "/api/v1/sessions/" + snap.ID.String()

	// Below the minimum the investment guard rejects the continue.
	w = doJSON(t, h, http.MethodPost, base+"/continue", `{"section":"investment"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("continue below minimum: %d; body %s", w.Code, w.Body.String())
	}

	// Formatted input is accepted and recomputed.
	w = doJSON(t, h, http.MethodPut, base+"/amount", `{"amount":"$1,000"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("edit amount: %d; body %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Shares != 1000 {
		t.Errorf("shares = %d, want 1000", snap.Shares)
	}

	w = doJSON(t, h, http.MethodPost, base+"/continue", `{"section":"investment"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("continue investment: %d; body %s", w.Code, w.Body.String())
	}

	for _, edit := range []string{
		`{"field":"firstName","value":"Jane"}`,
		`{"field":"lastName","value":"Doe"}`,
		`{"field":"email","value":"jane@example.com"}`,
	} {
		if w = doJSON(t, h, http.MethodPut, base+"/contact", edit); w.Code != http.StatusOK {
			t.Fatalf("edit contact: %d; body %s", w.Code, w.Body.String())
		}
	}

	w = doJSON(t, h, http.MethodPost, base+"/continue", `{"section":"contact"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("continue contact: %d; body %s", w.Code, w.Body.String())
	}
	w = doJSON(t, h, http.MethodPost, base+"/continue", `{"section":"confirmation"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("continue confirmation: %d; body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPost, base+"/submit", "")
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d; body %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Submission.Status != domainwizard.SubmissionSucceeded {
		t.Fatalf("submission = %s; body %s", snap.Submission.Status, w.Body.String())
	}
	if snap.Submission.PaymentURL != "https://pay.example/otl" {
		t.Errorf("paymentUrl = %q", snap.Submission.PaymentURL)
	}
	if !snap.Completed[domainwizard.SectionPayment] {
		t.Error("payment section should be completed")
	}

	// Abandon removes the session.
	req := httptest.NewRequest(http.MethodDelete, base, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("abandon: %d", rec.Code)
	}
	req = httptest.NewRequest(http.MethodGet, base, nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after abandon: %d", rec.Code)
	}
}

func TestContinueContactWithInvalidEmailDoesNotAdvance(t *testing.T) {
	h := testHandler(t, &stubClient{configured: true})

	w := doJSON(t, h, http.MethodPost, "/api/v1/sessions", `{"initialAmount":1000}`)
	var snap domainwizard.Session
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	base := "/api/v1/sessions/" + snap.ID.String()

	doJSON(t, h, http.MethodPost, base+"/expand", `{"section":"contact"}`)
	doJSON(t, h, http.MethodPut, base+"/contact", `{"field":"email","value":"nope"}`)
	w = doJSON(t, h, http.MethodPost, base+"/continue", `{"section":"contact"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("continue contact: %d; body %s", w.Code, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Completed[domainwizard.SectionContact] {
		t.Error("contact must not complete with validation errors")
	}
	if snap.Expanded != domainwizard.SectionContact {
		t.Errorf("expanded = %s, want contact", snap.Expanded)
	}
	if got := snap.Contact.Errors[domaininvestor.FieldEmail]; got != "Please enter a valid email address" {
		t.Errorf("email error = %q", got)
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	h := testHandler(t, &stubClient{})
	w := doJSON(t, h, http.MethodPut, "/api/v1/sessions/37b0b2a1-173c-4d64-9f4c-2f9e5f64e6b5/amount", `{"amount":"100"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
