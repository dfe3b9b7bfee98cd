package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/envelope-zero/forecast/internal/generator"
	"github.com/envelope-zero/forecast/internal/httputil"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/payoff"
	"github.com/envelope-zero/forecast/internal/projection"
	"github.com/envelope-zero/forecast/internal/recurring"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// maxHorizon is the maximum number of months that can be generated in one request.
const maxHorizon = 120

// Controller holds the settings for the forecast endpoints.
type Controller struct {
	Codes   recurring.CodeTable
	Primary string // Pay type code of the primary account
	Horizon int    // Default number of generated months
	Window  int    // Default number of days for the minimum balance
	Money   types.Money
}

type GenerateQuery struct {
	Horizon int       `form:"horizon" example:"12"`                                            // Number of months to generate
	AsOf    time.Time `form:"asOf" time_format:"2006-01-02" time_utc:"1" example:"2024-03-20"` // First generated day, defaults to today
}

type Generation struct {
	From     time.Time `json:"from" example:"2024-03-20T00:00:00Z"`  // First generated day
	Until    time.Time `json:"until" example:"2025-03-20T00:00:00Z"` // First day after the generated window
	Created  int       `json:"created" example:"148"`                // Number of created transactions
	Skipped  int       `json:"skipped" example:"3"`                  // Number of occurrences that are posted already
	Warnings []string  `json:"warnings"`                             // Records that could not be generated
}

type GenerateResponse struct {
	Data  *Generation `json:"data"`
	Error *string     `json:"error" example:"the horizon must be between 1 and 120 months"`
}

type ProjectionData struct {
	projection.Forecast
	Final    models.Balances `json:"final"`    // Balances after all transactions
	Warnings []string        `json:"warnings"` // Transactions that could not be applied
}

type ProjectionResponse struct {
	Data  *ProjectionData `json:"data"`
	Error *string         `json:"error"`
}

type MinimumQuery struct {
	Account string    `form:"account" example:"C"`                                             // Pay type code, defaults to the primary account
	Days    int       `form:"days" example:"90"`                                               // Number of days in the window
	From    time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" example:"2024-03-20"` // First day of the window, defaults to today
}

type MinimumBalance struct {
	Account       string          `json:"account" example:"C"`
	From          time.Time       `json:"from" example:"2024-03-20T00:00:00Z"`
	Days          int             `json:"days" example:"90"`
	Value         decimal.Decimal `json:"value" example:"-500"`
	Formatted     string          `json:"formatted" example:"-$500.00"`
	Date          time.Time       `json:"date" example:"2024-04-14T00:00:00Z"`
	FirstNegative *time.Time      `json:"firstNegative" example:"2024-04-14T00:00:00Z"` // First day with a negative balance, null if there is none
}

type MinimumResponse struct {
	Data  *MinimumBalance `json:"data"`
	Error *string         `json:"error" example:"no balance is tracked for pay type code 'X'"`
}

type Audit struct {
	Discrepancies []projection.Discrepancy `json:"discrepancies"`
	Warnings      []string                 `json:"warnings"`
}

type AuditResponse struct {
	Data  *Audit  `json:"data"`
	Error *string `json:"error"`
}

type PayoffQuery struct {
	Strategy string `form:"strategy" example:"AVALANCHE"` // Defaults to AVALANCHE
	Budget   string `form:"budget" example:"500"`         // Total monthly budget for all cards
}

type PayoffResponse struct {
	Data  *payoff.Schedule `json:"data"`
	Error *string          `json:"error" example:"unknown payoff strategy: 'fastest'"`
}

type PayoffCompareResponse struct {
	Data  []payoff.Schedule `json:"data"`
	Error *string           `json:"error" example:"the budget query parameter must be set to a positive amount"`
}

func (co Controller) registerForecastRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/generate", co.OptionsGenerate)
		r.POST("/generate", co.Generate)
	}

	{
		r.OPTIONS("/projection", co.OptionsProjection)
		r.GET("/projection", co.GetProjection)
		r.OPTIONS("/projection/minimum", co.OptionsProjection)
		r.GET("/projection/minimum", co.GetMinimum)
	}

	{
		r.OPTIONS("/recalculate", co.OptionsProjection)
		r.GET("/recalculate", co.GetRecalculate)
	}

	{
		r.OPTIONS("/payoff", co.OptionsProjection)
		r.GET("/payoff", co.GetPayoff)
		r.OPTIONS("/payoff/compare", co.OptionsProjection)
		r.GET("/payoff/compare", co.GetPayoffCompare)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Forecast
// @Success		204
// @Router			/v1/generate [options]
func (co Controller) OptionsGenerate(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Forecast
// @Success		204
// @Router			/v1/projection [options]
// @Router			/v1/projection/minimum [options]
// @Router			/v1/recalculate [options]
// @Router			/v1/payoff [options]
// @Router			/v1/payoff/compare [options]
func (co Controller) OptionsProjection(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Generate transactions
// @Description	Replaces all unposted transactions from asOf on with transactions generated from recurring charges, the paycheck, shared expenses and credit card interest
// @Tags			Forecast
// @Produce		json
// @Success		201		{object}	GenerateResponse
// @Failure		400		{object}	GenerateResponse
// @Failure		500		{object}	GenerateResponse
// @Param			horizon	query		int		false	"Number of months to generate"
// @Param			asOf	query		string	false	"First generated day in YYYY-MM-DD format, defaults to today"
// @Router			/v1/generate [post]
func (co Controller) Generate(c *gin.Context) {
	var query GenerateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, GenerateResponse{Error: errorPtr(httputil.ErrInvalidQuery)})
		return
	}

	horizon := co.Horizon
	if c.Request.URL.Query().Has("horizon") {
		horizon = query.Horizon
	}

	if horizon < 1 || horizon > maxHorizon {
		c.JSON(http.StatusBadRequest, GenerateResponse{Error: errorPtr(errHorizonInvalid)})
		return
	}

	asOf := query.AsOf
	if asOf.IsZero() {
		asOf = types.Day(time.Now())
	}

	g := generator.New(models.DB)
	g.Primary = co.Primary
	if co.Codes != nil {
		g.Codes = co.Codes
	}

	opts := generator.Options{HorizonMonths: horizon, AsOf: asOf}
	result, err := g.Generate(c.Request.Context(), opts)
	if err != nil {
		c.JSON(status(err), GenerateResponse{Error: errorPtr(err)})
		return
	}

	from, until := opts.Window()
	c.JSON(http.StatusCreated, GenerateResponse{
		Data: &Generation{
			From:     from,
			Until:    until,
			Created:  result.Created,
			Skipped:  result.Skipped,
			Warnings: errorStrings(result.Warnings),
		},
	})
}

// @Summary		Get projection
// @Description	Returns the balances of all accounts and credit cards after each unposted transaction, starting from the stored balances
// @Tags			Forecast
// @Produce		json
// @Success		200	{object}	ProjectionResponse
// @Failure		500	{object}	ProjectionResponse
// @Router			/v1/projection [get]
func (co Controller) GetProjection(c *gin.Context) {
	forecast, err := projection.Load(models.DB, time.Now())
	if err != nil {
		c.JSON(status(err), ProjectionResponse{Error: errorPtr(err)})
		return
	}

	c.JSON(http.StatusOK, ProjectionResponse{
		Data: &ProjectionData{
			Forecast: forecast,
			Final:    forecast.Final(),
			Warnings: errorStrings(forecast.Warnings),
		},
	})
}

// @Summary		Get minimum balance
// @Description	Returns the lowest projected balance of an account within a window of days and the first day the balance is negative
// @Tags			Forecast
// @Produce		json
// @Success		200		{object}	MinimumResponse
// @Failure		400		{object}	MinimumResponse
// @Failure		404		{object}	MinimumResponse
// @Failure		500		{object}	MinimumResponse
// @Param			account	query		string	false	"Pay type code of the account, defaults to the primary account"
// @Param			days	query		int		false	"Number of days in the window"
// @Param			from	query		string	false	"First day of the window in YYYY-MM-DD format, defaults to today"
// @Router			/v1/projection/minimum [get]
func (co Controller) GetMinimum(c *gin.Context) {
	var query MinimumQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, MinimumResponse{Error: errorPtr(httputil.ErrInvalidQuery)})
		return
	}

	days := co.Window
	if c.Request.URL.Query().Has("days") {
		days = query.Days
	}
	if days <= 0 {
		days = projection.DefaultWindow
	}

	from := query.From
	if from.IsZero() {
		from = types.Day(time.Now())
	}

	code := query.Account
	if code == "" {
		account, err := models.PrimaryAccount(models.DB, co.Primary)
		if errors.Is(err, models.ErrResourceNotFound) {
			c.JSON(http.StatusNotFound, MinimumResponse{Error: errorPtr(errNoPrimary)})
			return
		} else if err != nil {
			c.JSON(status(err), MinimumResponse{Error: errorPtr(err)})
			return
		}
		code = account.PayTypeCode
	}

	forecast, err := projection.Load(models.DB, from)
	if err != nil {
		c.JSON(status(err), MinimumResponse{Error: errorPtr(err)})
		return
	}

	minimum, err := forecast.MinimumInWindow(code, from, days)
	if err != nil {
		c.JSON(status(err), MinimumResponse{Error: errorPtr(err)})
		return
	}

	data := MinimumBalance{
		Account:   code,
		From:      types.Day(from),
		Days:      days,
		Value:     minimum.Value,
		Formatted: co.Money.Format(minimum.Value),
		Date:      minimum.Date,
	}

	if date, ok := forecast.FirstNegative(code, from); ok {
		data.FirstNegative = &date
	}

	c.JSON(http.StatusOK, MinimumResponse{Data: &data})
}

// @Summary		Recalculate balances
// @Description	Recomputes all balances from the initial balances and the posted transactions and returns the stored balances that differ. Nothing is corrected.
// @Tags			Forecast
// @Produce		json
// @Success		200	{object}	AuditResponse
// @Failure		500	{object}	AuditResponse
// @Router			/v1/recalculate [get]
func (co Controller) GetRecalculate(c *gin.Context) {
	discrepancies, warnings, err := projection.Audit(models.DB)
	if err != nil {
		c.JSON(status(err), AuditResponse{Error: errorPtr(err)})
		return
	}

	if discrepancies == nil {
		discrepancies = make([]projection.Discrepancy, 0)
	}

	c.JSON(http.StatusOK, AuditResponse{
		Data: &Audit{
			Discrepancies: discrepancies,
			Warnings:      errorStrings(warnings),
		},
	})
}

// parseBudget parses the monthly budget for payoff simulations.
func parseBudget(s string) (decimal.Decimal, error) {
	budget, err := decimal.NewFromString(s)
	if err != nil || !budget.IsPositive() {
		return decimal.Zero, errBudgetNotSet
	}
	return budget, nil
}

// @Summary		Get payoff schedule
// @Description	Simulates paying off all credit cards with a monthly budget
// @Tags			Forecast
// @Produce		json
// @Success		200			{object}	PayoffResponse
// @Failure		400			{object}	PayoffResponse
// @Failure		500			{object}	PayoffResponse
// @Param			strategy	query		string	false	"One of AVALANCHE, SNOWBALL, HYBRID, HIGH_UTILIZATION, CASH_ON_HAND"
// @Param			budget		query		string	true	"Total monthly budget for all cards"
// @Router			/v1/payoff [get]
func (co Controller) GetPayoff(c *gin.Context) {
	var query PayoffQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, PayoffResponse{Error: errorPtr(httputil.ErrInvalidQuery)})
		return
	}

	strategy := payoff.Avalanche
	if query.Strategy != "" {
		var err error
		strategy, err = payoff.ParseStrategy(query.Strategy)
		if err != nil {
			c.JSON(http.StatusBadRequest, PayoffResponse{Error: errorPtr(err)})
			return
		}
	}

	budget, err := parseBudget(query.Budget)
	if err != nil {
		c.JSON(http.StatusBadRequest, PayoffResponse{Error: errorPtr(err)})
		return
	}

	cards, err := payoff.Load(models.DB)
	if err != nil {
		c.JSON(status(err), PayoffResponse{Error: errorPtr(err)})
		return
	}

	schedule, err := payoff.Plan(cards, strategy, budget, time.Now())
	if err != nil {
		c.JSON(status(err), PayoffResponse{Error: errorPtr(err)})
		return
	}

	c.JSON(http.StatusOK, PayoffResponse{Data: &schedule})
}

// @Summary		Compare payoff strategies
// @Description	Simulates all payoff strategies with a monthly budget. The schedules are sorted by total interest, lowest first.
// @Tags			Forecast
// @Produce		json
// @Success		200		{object}	PayoffCompareResponse
// @Failure		400		{object}	PayoffCompareResponse
// @Failure		500		{object}	PayoffCompareResponse
// @Param			budget	query		string	true	"Total monthly budget for all cards"
// @Router			/v1/payoff/compare [get]
func (co Controller) GetPayoffCompare(c *gin.Context) {
	budget, err := parseBudget(c.Query("budget"))
	if err != nil {
		c.JSON(http.StatusBadRequest, PayoffCompareResponse{Error: errorPtr(err)})
		return
	}

	cards, err := payoff.Load(models.DB)
	if err != nil {
		c.JSON(status(err), PayoffCompareResponse{Error: errorPtr(err)})
		return
	}

	c.JSON(http.StatusOK, PayoffCompareResponse{Data: payoff.Compare(cards, budget, time.Now())})
}
