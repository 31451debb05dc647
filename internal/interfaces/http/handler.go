// @title           Investor Checkout API
// @version         1.0
// @description     API for the investment checkout wizard and investor onboarding

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1

package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"invest-checkout/internal/application/service/calculation"
	apponboarding "invest-checkout/internal/application/service/onboarding"
	appwizard "invest-checkout/internal/application/service/wizard"
	domaininvestor "invest-checkout/internal/domain/entity/investor"
	domainwizard "invest-checkout/internal/domain/entity/wizard"
)

const basePath = "/api/v1"

var errMissingSessionID = errors.New("missing session id")

type Handler struct {
	router     *gin.Engine
	wizard     *appwizard.Service
	onboarding *apponboarding.Service
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

func NewHandler(wizard *appwizard.Service, onboarding *apponboarding.Service, cache *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) *Handler {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &Handler{
		router:     router,
		wizard:     wizard,
		onboarding: onboarding,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := h.router.Group(basePath)

	api.POST("/investor", h.createInvestor)
	api.PATCH("/investor", h.updateInvestor)

	off := api.Group("/offering")
	if h.cache != nil {
		off.Use(h.cacheMiddleware())
	}
	{
		off.GET("", h.getOffering)
		off.GET("/quote", h.getQuote)
	}

	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.createSession)
		sessions.GET("/:id", h.getSession)
		sessions.DELETE("/:id", h.abandonSession)
		sessions.PUT("/:id/amount", h.editAmount)
		sessions.PUT("/:id/shares", h.editShares)
		sessions.POST("/:id/expand", h.expandSection)
		sessions.POST("/:id/continue", h.continueSection)
		sessions.PUT("/:id/contact", h.editContactField)
		sessions.POST("/:id/contact/blur", h.blurContactField)
		sessions.POST("/:id/submit", h.submitPayment)
	}
}

type createInvestorPayload struct {
	Email            string  `json:"email"`
	FirstName        string  `json:"firstName"`
	LastName         string  `json:"lastName"`
	InvestorType     string  `json:"investorType"`
	InvestmentAmount float64 `json:"investmentAmount"`
}

type investorResponse struct {
	InvestorID     string  `json:"investorId"`
	SubscriptionID string  `json:"subscriptionId"`
	State          string  `json:"state"`
	PaymentURL     *string `json:"paymentUrl"`
}

// createInvestor creates an investor record at the external service
// @Summary      Create investor
// @Description  Create an investor for the configured deal and fetch its one-time payment link
// @Tags         investor
// @Accept       json
// @Produce      json
// @Param        investor  body      createInvestorPayload  true  "Investor data"
// @Success      200       {object}  investorResponse
// @Failure      400       {object}  map[string]string
// @Failure      500       {object}  map[string]string
// @Failure      503       {object}  map[string]string
// @Router       /investor [post]
func (h *Handler) createInvestor(c *gin.Context) {
	var payload createInvestorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if payload.InvestorType != "" {
		if _, err := domaininvestor.NewType(payload.InvestorType); err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}
	}

	res, err := h.onboarding.CreateInvestor(c.Request.Context(), domaininvestor.CreateRequest{
		Email:            payload.Email,
		FirstName:        payload.FirstName,
		LastName:         payload.LastName,
		InvestmentAmount: decimal.NewFromFloat(payload.InvestmentAmount),
	})
	if err != nil {
		h.writeOnboardingError(c, err)
		return
	}

	resp := investorResponse{
		InvestorID:     res.InvestorID,
		SubscriptionID: res.SubscriptionID,
		State:          res.State,
	}
	if res.PaymentURL != "" {
		resp.PaymentURL = &res.PaymentURL
	}
	c.JSON(http.StatusOK, resp)
}

type updateInvestorPayload struct {
	InvestorID  string `json:"investorId" binding:"required"`
	CurrentStep string `json:"currentStep"`
}

// updateInvestor advances the investor's onboarding step
// @Summary      Update investor step
// @Description  Record the investor's current onboarding step at the external service
// @Tags         investor
// @Accept       json
// @Produce      json
// @Param        update  body      updateInvestorPayload  true  "Investor step data"
// @Success      200     {object}  investor.Record
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Failure      503     {object}  map[string]string
// @Router       /investor [patch]
func (h *Handler) updateInvestor(c *gin.Context) {
	var payload updateInvestorPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	res, err := h.onboarding.UpdateInvestor(c.Request.Context(), payload.InvestorID, domaininvestor.UpdateRequest{
		CurrentStep: payload.CurrentStep,
	})
	if err != nil {
		h.writeOnboardingError(c, err)
		return
	}

	c.JSON(http.StatusOK, domaininvestor.Record{
		ID:          res.InvestorID,
		State:       res.State,
		CurrentStep: res.CurrentStep,
	})
}

// getOffering returns the offering terms
// @Summary      Get offering
// @Description  Get the share price, bounds and bonus tiers of the current offering
// @Tags         offering
// @Produce      json
// @Success      200  {object}  offering.Offering
// @Router       /offering [get]
func (h *Handler) getOffering(c *gin.Context) {
	off := h.wizard.Offering()
	c.JSON(http.StatusOK, gin.H{
		"offering":             off,
		"sharePriceFormatted":  calculation.FormatCurrency(off.SharePrice, 2),
		"minInvestmentDisplay": calculation.FormatCurrency(off.MinInvestment, 2),
	})
}

// getQuote runs the investment calculator for an amount
// @Summary      Quote an amount
// @Description  Convert an investment amount into base, bonus and total shares
// @Tags         offering
// @Produce      json
// @Param        amount  query     string  true  "Investment amount, accepts $ and , separators"
// @Success      200     {object}  map[string]any
// @Router       /offering/quote [get]
func (h *Handler) getQuote(c *gin.Context) {
	amount := calculation.ParseAmount(c.Query("amount"))
	calc := calculation.Calculate(amount, h.wizard.Offering())
	c.JSON(http.StatusOK, gin.H{
		"calculation":     calc,
		"formattedAmount": calculation.FormatCurrency(calc.Amount, 2),
		"formattedShares": calculation.FormatNumber(calc.TotalShares),
	})
}

type createSessionPayload struct {
	InitialAmount float64 `json:"initialAmount"`
}

// createSession starts a wizard session
// @Summary      Start wizard session
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        session  body      createSessionPayload  true  "Initial amount"
// @Success      201      {object}  wizard.Session
// @Failure      400      {object}  map[string]string
// @Router       /sessions [post]
func (h *Handler) createSession(c *gin.Context) {
	var payload createSessionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap := h.wizard.CreateSession(decimal.NewFromFloat(payload.InitialAmount))
	c.JSON(http.StatusCreated, snap)
}

// getSession returns the current session snapshot
// @Summary      Get wizard session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  wizard.Session
// @Failure      404  {object}  map[string]string
// @Router       /sessions/{id} [get]
func (h *Handler) getSession(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.Get(id)
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// abandonSession tears the session down
// @Summary      Abandon wizard session
// @Tags         sessions
// @Param        id  path  string  true  "Session ID"
// @Success      204  "No Content"
// @Failure      404  {object}  map[string]string
// @Router       /sessions/{id} [delete]
func (h *Handler) abandonSession(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	if err := h.wizard.Abandon(id); err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type amountPayload struct {
	Amount string `json:"amount" binding:"required"`
}

// editAmount sets the investment amount and recomputes shares
// @Summary      Edit investment amount
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id      path      string         true  "Session ID"
// @Param        amount  body      amountPayload  true  "Amount, accepts $ and , separators"
// @Success      200     {object}  wizard.Session
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /sessions/{id}/amount [put]
func (h *Handler) editAmount(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var payload amountPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.EditAmount(id, calculation.ParseAmount(payload.Amount))
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type sharesPayload struct {
	Shares string `json:"shares" binding:"required"`
}

// editShares sets the share count and regenerates the amount
// @Summary      Edit share count
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id      path      string         true  "Session ID"
// @Param        shares  body      sharesPayload  true  "Share count"
// @Success      200     {object}  wizard.Session
// @Failure      400     {object}  map[string]string
// @Failure      404     {object}  map[string]string
// @Router       /sessions/{id}/shares [put]
func (h *Handler) editShares(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var payload sharesPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.EditShares(id, calculation.ParseShares(payload.Shares))
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type sectionPayload struct {
	Section string `json:"section" binding:"required"`
}

// expandSection expands a section for interaction
// @Summary      Expand section
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Session ID"
// @Param        section  body      sectionPayload  true  "Section name"
// @Success      200      {object}  wizard.Session
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /sessions/{id}/expand [post]
func (h *Handler) expandSection(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	sec, err := bindSection(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.SelectSection(id, sec)
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// continueSection runs a section's guard and advances on success
// @Summary      Continue from section
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Session ID"
// @Param        section  body      sectionPayload  true  "Section name"
// @Success      200      {object}  wizard.Session
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      422      {object}  map[string]string
// @Router       /sessions/{id}/continue [post]
func (h *Handler) continueSection(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	sec, err := bindSection(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.ContinueSection(id, sec)
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type contactEditPayload struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// editContactField updates one contact-form value
// @Summary      Edit contact field
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Session ID"
// @Param        field  body      contactEditPayload  true  "Field and value"
// @Success      200    {object}  wizard.Session
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /sessions/{id}/contact [put]
func (h *Handler) editContactField(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var payload contactEditPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	field, err := domaininvestor.NewContactField(payload.Field)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.EditContactField(id, field, payload.Value)
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type contactBlurPayload struct {
	Field string `json:"field" binding:"required"`
}

// blurContactField marks a contact field touched and validates it
// @Summary      Blur contact field
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id     path      string              true  "Session ID"
// @Param        field  body      contactBlurPayload  true  "Field name"
// @Success      200    {object}  wizard.Session
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Router       /sessions/{id}/contact/blur [post]
func (h *Handler) blurContactField(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	var payload contactBlurPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	field, err := domaininvestor.NewContactField(payload.Field)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.BlurContactField(id, field)
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// submitPayment performs the final submission from the payment section
// @Summary      Submit payment
// @Description  Create the investor record upstream and record the submission outcome
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  wizard.Session
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /sessions/{id}/submit [post]
func (h *Handler) submitPayment(c *gin.Context) {
	id, err := parseSessionID(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	snap, err := h.wizard.Submit(c.Request.Context(), id)
	if err != nil {
		h.writeWizardError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) writeWizardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appwizard.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, err)
	case errors.Is(err, appwizard.ErrSessionClosed):
		writeError(c, http.StatusGone, err)
	case errors.Is(err, appwizard.ErrSubmissionInFlight), errors.Is(err, appwizard.ErrNotOnPayment):
		writeError(c, http.StatusConflict, err)
	case errors.Is(err, appwizard.ErrAmountBelowMinimum), errors.Is(err, appwizard.ErrAmountAboveMaximum):
		writeError(c, http.StatusUnprocessableEntity, err)
	default:
		writeError(c, http.StatusBadRequest, err)
	}
}

func (h *Handler) writeOnboardingError(c *gin.Context, err error) {
	var oe *domaininvestor.OnboardingError
	if errors.As(err, &oe) {
		status := http.StatusInternalServerError
		if oe.Category == domaininvestor.CategoryConfigurationMissing {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": oe.Message})
		return
	}
	writeError(c, http.StatusInternalServerError, err)
}

func parseSessionID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errMissingSessionID
	}
	return id, nil
}

func bindSection(c *gin.Context) (domainwizard.Section, error) {
	var payload sectionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		return "", err
	}
	return domainwizard.NewSection(payload.Section)
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// cacheMiddleware caches GET responses in Redis. Only the offering
// endpoints use it; they are pure functions of their query.
func (h *Handler) cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cache == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := h.cacheKey(c)
		ctx := c.Request.Context()

		if cached, err := h.cache.Get(ctx, key).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			c.Abort()
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: c.Writer,
			status:         http.StatusOK,
			body:           &bytes.Buffer{},
		}
		c.Writer = recorder

		c.Next()

		if recorder.status >= 200 && recorder.status < 300 && recorder.body.Len() > 0 {
			if err := h.cache.Set(ctx, key, recorder.body.Bytes(), h.cacheTTL).Err(); err != nil && h.logger != nil {
				h.logger.WithError(err).WithField("key", key).Warn("failed to cache response")
			}
		}
	}
}

type responseRecorder struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if len(data) > 0 {
		r.body.Write(data)
	}
	return r.ResponseWriter.Write(data)
}

func (h *Handler) cacheKey(c *gin.Context) string {
	return fmt.Sprintf("cache:%s:%s?%s", c.Request.Method, c.FullPath(), c.Request.URL.RawQuery)
}
