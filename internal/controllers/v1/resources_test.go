package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	v1 "github.com/envelope-zero/forecast/internal/controllers/v1"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/envelope-zero/forecast/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) createAccountsV1(accounts ...map[string]any) []v1.Response[models.Account] {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/accounts", accounts)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.CreateResponse[models.Account]
	test.DecodeResponse(suite.T(), &r, &response)
	return response.Data
}

func (suite *TestSuiteStandard) TestAccountsCreate() {
	data := suite.createAccountsV1(map[string]any{
		"name":           "Checking",
		"payTypeCode":    "C",
		"initialBalance": "2500",
	})

	suite.Require().Len(data, 1)
	account := data[0].Data
	suite.Require().NotNil(account)
	suite.Assert().NotEqual(uuid.Nil, account.ID)
	suite.Assert().Equal(models.AccountTypeChecking, account.Type)
	suite.Assert().True(account.Balance.Equal(decimal.NewFromInt(2500)), "balance starts at the initial balance, is %s", account.Balance)
}

func (suite *TestSuiteStandard) TestCreateBalanceDefault() {
	tests := []struct {
		name    string
		url     string
		body    map[string]any
		balance int64
	}{
		{"Account without balance", "accounts", map[string]any{"name": "Checking", "payTypeCode": "C", "initialBalance": "2500"}, 2500},
		{"Account with zero balance", "accounts", map[string]any{"name": "Savings", "payTypeCode": "S", "initialBalance": "2500", "balance": "0"}, 0},
		{"Account with null balance", "accounts", map[string]any{"name": "Cash", "payTypeCode": "H", "initialBalance": "80", "balance": nil}, 80},
		{"Card without balance", "credit-cards", map[string]any{"name": "Visa", "payTypeCode": "V", "creditLimit": "5000", "initialBalance": "1200"}, 1200},
		{"Paid off card", "credit-cards", map[string]any{"name": "Store", "payTypeCode": "T", "creditLimit": "500", "initialBalance": "1200", "balance": 0}, 0},
		{"Loan without balance", "loans", map[string]any{"name": "Car", "payTypeCode": "L1", "principal": "18000"}, 18000},
		{"Paid off loan", "loans", map[string]any{"name": "Bike", "payTypeCode": "L2", "principal": "1500", "balance": "0"}, 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/"+tt.url, []map[string]any{tt.body})
			test.AssertHTTPStatus(t, &r, http.StatusCreated)

			var response struct {
				Data []struct {
					Data struct {
						Balance decimal.Decimal `json:"balance"`
					} `json:"data"`
				} `json:"data"`
			}
			test.DecodeResponse(t, &r, &response)
			require.Len(t, response.Data, 1)
			assert.True(t, decimal.NewFromInt(tt.balance).Equal(response.Data[0].Data.Balance), "Balance is %s", response.Data[0].Data.Balance)
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsCreateIgnoresID() {
	id := uuid.New()
	data := suite.createAccountsV1(map[string]any{
		"id":          id.String(),
		"name":        "Checking",
		"payTypeCode": "C",
	})

	suite.Require().NotNil(data[0].Data)
	suite.Assert().NotEqual(id, data[0].Data.ID)
}

func (suite *TestSuiteStandard) TestAccountsCreateErrors() {
	suite.createAccountsV1(map[string]any{"name": "Checking", "payTypeCode": "C"})

	tests := []struct {
		name   string
		body   any
		status int
		errMsg string
	}{
		{"Empty body", "", http.StatusBadRequest, "the request body must not be empty"},
		{"Broken JSON", `[{ "name": 2`, http.StatusBadRequest, "the body of your request contains invalid or un-parseable data"},
		{"Duplicate name", []map[string]any{{"name": "Checking", "payTypeCode": "X"}}, http.StatusBadRequest, models.ErrAccountNameNotUnique.Error()},
		{"Duplicate code", []map[string]any{{"name": "Savings", "payTypeCode": "C"}}, http.StatusBadRequest, models.ErrPayTypeCodeNotUnique.Error()},
		{"Missing code", []map[string]any{{"name": "Savings"}}, http.StatusBadRequest, "invalid account: payTypeCode must not be empty"},
		{"Invalid type", []map[string]any{{"name": "Savings", "payTypeCode": "S", "type": "BROKERAGE"}}, http.StatusBadRequest, "invalid account: type"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/accounts", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Contains(t, r.Body.String(), tt.errMsg)
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsCreatePartialFailure() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/accounts", []map[string]any{
		{"name": "Checking", "payTypeCode": "C"},
		{"name": "Checking", "payTypeCode": "D"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.CreateResponse[models.Account]
	test.DecodeResponse(suite.T(), &r, &response)

	suite.Require().Len(response.Data, 2)
	suite.Assert().NotNil(response.Data[0].Data)
	suite.Assert().Nil(response.Data[0].Error)
	suite.Assert().Nil(response.Data[1].Data)
	suite.Require().NotNil(response.Data[1].Error)
	suite.Assert().Equal(models.ErrAccountNameNotUnique.Error(), *response.Data[1].Error)
}

func (suite *TestSuiteStandard) TestAccountsList() {
	suite.createAccountsV1(
		map[string]any{"name": "Checking", "payTypeCode": "C"},
		map[string]any{"name": "Savings", "payTypeCode": "S", "type": "SAVINGS"},
		map[string]any{"name": "Wallet", "payTypeCode": "W", "type": "CASH"},
		map[string]any{"name": "Joint Checking", "payTypeCode": "J"},
	)

	tests := []struct {
		query string
		names []string
		total int64
	}{
		{"", []string{"Checking", "Joint Checking", "Savings", "Wallet"}, 4},
		{"name=check", []string{"Checking", "Joint Checking"}, 2},
		{"type=SAVINGS", []string{"Savings"}, 1},
		{"payTypeCode=W", []string{"Wallet"}, 1},
		{"type=CHECKING&name=joint", []string{"Joint Checking"}, 1},
		{"limit=2", []string{"Checking", "Joint Checking"}, 4},
		{"limit=2&offset=3", []string{"Wallet"}, 4},
		{"offset=1&limit=1", []string{"Joint Checking"}, 4},
		{"limit=0", []string{}, 4},
	}

	for _, tt := range tests {
		suite.T().Run(tt.query, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/accounts?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.ListResponse[models.Account]
			test.DecodeResponse(t, &r, &response)

			names := make([]string, 0)
			for _, a := range response.Data {
				names = append(names, a.Name)
			}

			assert.Equal(t, tt.names, names)
			require.NotNil(t, response.Pagination)
			assert.Equal(t, tt.total, response.Pagination.Total)
			assert.Equal(t, len(tt.names), response.Pagination.Count)
		})
	}
}

func (suite *TestSuiteStandard) TestListInvalidQuery() {
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/transactions?fromDate=March", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	suite.Assert().Contains(r.Body.String(), "the query string contains unparseable data")
}

func (suite *TestSuiteStandard) TestAccountsGetUpdateDelete() {
	data := suite.createAccountsV1(map[string]any{"name": "Checking", "payTypeCode": "C", "note": "old"})
	id := data[0].Data.ID
	url := fmt.Sprintf("http://example.com/v1/accounts/%s", id)

	r := test.Request(suite.T(), http.MethodGet, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	// Only the name changes, the ID in the body is ignored
	r = test.Request(suite.T(), http.MethodPatch, url, map[string]any{"name": "Main", "id": uuid.New().String()})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response[models.Account]
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().Equal(id, response.Data.ID)
	suite.Assert().Equal("Main", response.Data.Name)
	suite.Assert().Equal("old", response.Data.Note)
	suite.Assert().Equal("C", response.Data.PayTypeCode)

	r = test.Request(suite.T(), http.MethodPatch, url, map[string]any{"payTypeCode": ""})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodDelete, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, url, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
	suite.Assert().Contains(r.Body.String(), "there is no account matching your query")
}

func (suite *TestSuiteStandard) TestResourcesNotFound() {
	for _, path := range []string{
		"accounts",
		"credit-cards",
		"loans",
		"recurring-charges",
		"paycheck-configs",
		"shared-expenses",
		"transactions",
		"match-rules",
		"deferred-purchases",
	} {
		suite.T().Run(path, func(t *testing.T) {
			url := fmt.Sprintf("http://example.com/v1/%s/%s", path, uuid.New())

			for _, method := range []string{http.MethodOptions, http.MethodGet, http.MethodPatch, http.MethodDelete} {
				r := test.Request(t, method, url, map[string]any{})
				test.AssertHTTPStatus(t, &r, http.StatusNotFound)
			}

			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/%s/not-a-uuid", path), "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			r = test.Request(t, http.MethodOptions, fmt.Sprintf("http://example.com/v1/%s", path), "")
			test.AssertHTTPStatus(t, &r, http.StatusNoContent)
			assert.Equal(t, "OPTIONS, GET, POST", r.Header().Get("allow"))

			r = test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/%s", path), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
		})
	}
}

func (suite *TestSuiteStandard) TestOptionsDetail() {
	account := models.Account{Name: "Checking", PayTypeCode: "C"}
	suite.create(&account)

	r := test.Request(suite.T(), http.MethodOptions, fmt.Sprintf("http://example.com/v1/accounts/%s", account.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	suite.Assert().Equal("OPTIONS, GET, PATCH, DELETE", r.Header().Get("allow"))
}

func (suite *TestSuiteStandard) TestDatabaseClosed() {
	suite.CloseDB()

	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/accounts", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
	suite.Assert().Contains(r.Body.String(), models.ErrGeneral.Error())
}

func (suite *TestSuiteStandard) TestCreditCardUpdateSyncsLinkedCharges() {
	card := models.CreditCard{Name: "Visa", PayTypeCode: "V", DueDay: 15, CreditLimit: decimal.NewFromInt(5000)}
	suite.create(&card)

	charge := models.RecurringCharge{
		Name:          "Visa Payment",
		Amount:        decimal.NewFromInt(-50),
		DayOfMonth:    15,
		PaymentMethod: "C",
		AmountType:    models.AmountTypeFixed,
		LinkedCardID:  &card.ID,
	}
	suite.create(&charge)

	r := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("http://example.com/v1/credit-cards/%s", card.ID), map[string]any{"dueDay": 20})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var synced models.RecurringCharge
	suite.Require().Nil(models.DB.First(&synced, "id = ?", charge.ID).Error)
	suite.Assert().Equal(20, synced.DayOfMonth)
	suite.Assert().Equal(models.AmountTypeCardBalance, synced.AmountType)
}

func (suite *TestSuiteStandard) TestCreditCardDeleteReassign() {
	visa := models.CreditCard{Name: "Visa", PayTypeCode: "V"}
	suite.create(&visa)
	master := models.CreditCard{Name: "Mastercard", PayTypeCode: "M"}
	suite.create(&master)

	charge := models.RecurringCharge{Name: "Streaming", Amount: decimal.NewFromInt(-15), DayOfMonth: 3, PaymentMethod: "V"}
	suite.create(&charge)

	url := fmt.Sprintf("http://example.com/v1/credit-cards/%s", visa.ID)

	r := test.Request(suite.T(), http.MethodDelete, url+"?reassignTo=nope", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodDelete, url+"?reassignTo="+master.ID.String()+"&deleteTransactions=maybe", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), http.MethodDelete, url+"?reassignTo="+uuid.NewString(), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), http.MethodDelete, url+"?reassignTo="+master.ID.String(), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	var moved models.RecurringCharge
	suite.Require().Nil(models.DB.First(&moved, "id = ?", charge.ID).Error)
	suite.Assert().Equal("M", moved.PaymentMethod)
}

func (suite *TestSuiteStandard) TestPaycheckConfigDeductions() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/paycheck-configs", []map[string]any{
		{
			"grossAmount":   "2000",
			"frequency":     "BIWEEKLY",
			"effectiveDate": "2024-01-05T00:00:00Z",
			"deductions": []map[string]any{
				{"name": "401k", "type": "PERCENTAGE", "value": "6", "position": 1},
				{"name": "Health", "type": "FIXED", "value": "150", "position": 2},
			},
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var created v1.CreateResponse[models.PaycheckConfig]
	test.DecodeResponse(suite.T(), &r, &created)
	suite.Require().NotNil(created.Data[0].Data)
	id := created.Data[0].Data.ID

	url := fmt.Sprintf("http://example.com/v1/paycheck-configs/%s", id)
	r = test.Request(suite.T(), http.MethodPatch, url, map[string]any{"archived": true})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.Response[models.PaycheckConfig]
	test.DecodeResponse(suite.T(), &r, &response)
	suite.Require().NotNil(response.Data)
	suite.Assert().True(response.Data.Archived)
	suite.Assert().Len(response.Data.Deductions, 2)
	suite.Assert().Equal(time.Friday, response.Data.PayDayOfWeek)
	suite.Assert().True(response.Data.NetPay().Equal(decimal.NewFromInt(1730)), "net pay is %s", response.Data.NetPay())
}

func (suite *TestSuiteStandard) TestRecurringChargeFilter() {
	card := models.CreditCard{Name: "Visa", PayTypeCode: "V"}
	suite.create(&card)

	suite.create(&models.RecurringCharge{Name: "Rent", Amount: decimal.NewFromInt(-1450), DayOfMonth: 1, PaymentMethod: "C"})
	suite.create(&models.RecurringCharge{Name: "Visa Payment", Amount: decimal.NewFromInt(-50), DayOfMonth: 15, PaymentMethod: "C", LinkedCardID: &card.ID})
	suite.create(&models.RecurringCharge{Name: "Gym", Amount: decimal.NewFromInt(-30), DayOfMonth: 5, PaymentMethod: "V", Paused: true})

	tests := []struct {
		query string
		names []string
	}{
		{"", []string{"Rent", "Gym", "Visa Payment"}},
		{"paymentMethod=C", []string{"Rent", "Visa Payment"}},
		{fmt.Sprintf("linkedCard=%s", card.ID), []string{"Visa Payment"}},
		{"linkedCard=", []string{"Rent", "Gym"}},
		{"paused=true", []string{"Gym"}},
		{"dayOfMonth=15", []string{"Visa Payment"}},
		{"name=en", []string{"Rent", "Visa Payment"}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.query, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, "http://example.com/v1/recurring-charges?"+tt.query, "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.ListResponse[models.RecurringCharge]
			test.DecodeResponse(t, &r, &response)

			names := make([]string, 0)
			for _, c := range response.Data {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func (suite *TestSuiteStandard) TestTransactionFilter() {
	for i, date := range []string{"2024-03-01", "2024-03-15", "2024-04-01"} {
		suite.create(&models.Transaction{
			Date:          day(date),
			Description:   fmt.Sprintf("Transaction %d", i),
			Amount:        decimal.NewFromInt(-10),
			PaymentMethod: "C",
		})
	}

	tests := []struct {
		query string
		count int
	}{
		{"", 3},
		{"fromDate=2024-03-15", 2},
		{"untilDate=2024-03-15", 2},
		{"fromDate=2024-03-02&untilDate=2024-03-31", 1},
		{"posted=true", 0},
		{"posted=false", 3},
		{"description=transaction%202", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.query, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, "http://example.com/v1/transactions?"+tt.query, "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.ListResponse[models.Transaction]
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestComputedFields() {
	card := models.CreditCard{Name: "Store", PayTypeCode: "S", CreditLimit: decimal.NewFromInt(5000)}
	suite.create(&card)

	loan := models.Loan{Name: "Car", PayTypeCode: "L", Principal: decimal.NewFromInt(1000), PaymentAmount: decimal.NewFromInt(300)}
	suite.create(&loan)

	promoEnd := types.Day(time.Now()).AddDate(0, 0, 30)
	purchase := models.DeferredPurchase{
		CreditCardID:      card.ID,
		Description:       "Sofa",
		PurchaseAmount:    decimal.NewFromInt(3650),
		RemainingBalance:  decimal.NewFromInt(600),
		StandardAPR:       decimal.NewFromFloat(0.2),
		PurchaseDate:      promoEnd.AddDate(0, 0, -365),
		PromoEndDate:      promoEnd,
		MinMonthlyPayment: decimal.NewFromInt(50),
	}
	suite.create(&purchase)

	paycheck := models.PaycheckConfig{
		GrossAmount:   decimal.NewFromInt(2000),
		Frequency:     models.PayFrequencyBiweekly,
		EffectiveDate: day("2024-01-05"),
		Deductions:    []models.PaycheckDeduction{{Name: "Health", Type: models.DeductionFixed, Value: decimal.NewFromInt(150)}},
	}
	suite.create(&paycheck)

	var l struct {
		Data struct {
			RemainingPayments int `json:"remainingPayments"`
		} `json:"data"`
	}
	r := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/loans/%s", loan.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &l)
	suite.Assert().Equal(4, l.Data.RemainingPayments)

	var p struct {
		Data struct {
			DaysUntilExpiry      int              `json:"daysUntilExpiry"`
			RiskLevel            models.RiskLevel `json:"riskLevel"`
			AtRisk               bool             `json:"atRisk"`
			MonthlyPaymentNeeded decimal.Decimal  `json:"monthlyPaymentNeeded"`
			PotentialInterest    decimal.Decimal  `json:"potentialInterest"`
		} `json:"data"`
	}
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/deferred-purchases/%s", purchase.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &p)
	suite.Assert().Equal(30, p.Data.DaysUntilExpiry)
	suite.Assert().Equal(models.RiskHigh, p.Data.RiskLevel)
	suite.Assert().True(p.Data.AtRisk)
	suite.Assert().True(decimal.NewFromInt(600).Equal(p.Data.MonthlyPaymentNeeded), "Monthly payment needed is %s", p.Data.MonthlyPaymentNeeded)
	suite.Assert().True(decimal.NewFromInt(730).Equal(p.Data.PotentialInterest), "Potential interest is %s", p.Data.PotentialInterest)

	var c struct {
		Data struct {
			NetPay      decimal.Decimal `json:"netPay"`
			AnnualGross decimal.Decimal `json:"annualGross"`
			AnnualNet   decimal.Decimal `json:"annualNet"`
		} `json:"data"`
	}
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/paycheck-configs/%s", paycheck.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &c)
	suite.Assert().True(decimal.NewFromInt(1850).Equal(c.Data.NetPay), "Net pay is %s", c.Data.NetPay)
	suite.Assert().True(decimal.NewFromInt(52000).Equal(c.Data.AnnualGross), "Annual gross is %s", c.Data.AnnualGross)
	suite.Assert().True(decimal.NewFromInt(48100).Equal(c.Data.AnnualNet), "Annual net is %s", c.Data.AnnualNet)
}
