package v1

import (
	"net/http"

	"github.com/envelope-zero/forecast/internal/httputil"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/gin-gonic/gin"
)

type Links struct {
	Accounts          string `json:"accounts" example:"https://example.com/api/v1/accounts"`                    // URL of account list endpoint
	CreditCards       string `json:"creditCards" example:"https://example.com/api/v1/credit-cards"`             // URL of credit card list endpoint
	Loans             string `json:"loans" example:"https://example.com/api/v1/loans"`                          // URL of loan list endpoint
	RecurringCharges  string `json:"recurringCharges" example:"https://example.com/api/v1/recurring-charges"`   // URL of recurring charge list endpoint
	PaycheckConfigs   string `json:"paycheckConfigs" example:"https://example.com/api/v1/paycheck-configs"`     // URL of paycheck configuration list endpoint
	SharedExpenses    string `json:"sharedExpenses" example:"https://example.com/api/v1/shared-expenses"`       // URL of shared expense list endpoint
	Transactions      string `json:"transactions" example:"https://example.com/api/v1/transactions"`            // URL of transaction list endpoint
	MatchRules        string `json:"matchRules" example:"https://example.com/api/v1/match-rules"`               // URL of match rule list endpoint
	DeferredPurchases string `json:"deferredPurchases" example:"https://example.com/api/v1/deferred-purchases"` // URL of deferred purchase list endpoint
	Generate          string `json:"generate" example:"https://example.com/api/v1/generate"`                    // URL of the generation endpoint
	Projection        string `json:"projection" example:"https://example.com/api/v1/projection"`                // URL of the projection endpoint
	Recalculate       string `json:"recalculate" example:"https://example.com/api/v1/recalculate"`              // URL of the recalculation endpoint
	Payoff            string `json:"payoff" example:"https://example.com/api/v1/payoff"`                        // URL of the payoff endpoint
}

type RootResponse struct {
	Links Links `json:"links"` // Links for the v1 API
}

// RegisterRoutes registers all v1 routes with the RouterGroup that is passed.
func RegisterRoutes(r *gin.RouterGroup, co Controller) {
	{
		r.OPTIONS("", OptionsRoot)
		r.GET("", GetRoot)
	}

	registerResources(r)
	co.registerForecastRoutes(r)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			v1
// @Success		204
// @Router			/v1 [options]
func OptionsRoot(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		v1 API
// @Description	Returns general information about the v1 API
// @Tags			v1
// @Success		200	{object}	RootResponse
// @Router			/v1 [get]
func GetRoot(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL)) + "/v1"

	c.JSON(http.StatusOK, RootResponse{
		Links: Links{
			Accounts:          url + "/accounts",
			CreditCards:       url + "/credit-cards",
			Loans:             url + "/loans",
			RecurringCharges:  url + "/recurring-charges",
			PaycheckConfigs:   url + "/paycheck-configs",
			SharedExpenses:    url + "/shared-expenses",
			Transactions:      url + "/transactions",
			MatchRules:        url + "/match-rules",
			DeferredPurchases: url + "/deferred-purchases",
			Generate:          url + "/generate",
			Projection:        url + "/projection",
			Recalculate:       url + "/recalculate",
			Payoff:            url + "/payoff",
		},
	})
}
