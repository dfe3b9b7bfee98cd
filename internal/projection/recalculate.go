package projection

import (
	"fmt"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Discrepancy is a stored balance that does not match the balance
// computed from the posted transactions.
type Discrepancy struct {
	Entity   models.EntityKind `json:"entity" example:"account"`
	ID       uuid.UUID         `json:"id" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	Code     string            `json:"payTypeCode" example:"C"`
	Name     string            `json:"name" example:"Checking"`
	Stored   decimal.Decimal   `json:"stored" example:"1520.5"`
	Computed decimal.Decimal   `json:"computed" example:"1500.5"`
}

func (d Discrepancy) Error() string {
	return fmt.Sprintf("the stored balance of %s '%s' (%s) is %s, but the posted transactions add up to %s", d.Entity, d.Name, d.Code, d.Stored, d.Computed)
}

// Difference is the stored minus the computed balance.
func (d Discrepancy) Difference() decimal.Decimal {
	return d.Stored.Sub(d.Computed)
}

// Recalculate recomputes the balances of all accounts and credit cards from
// their initial balances and the posted transactions and compares them to
// the stored balances.
//
// Nothing is corrected. Unposted transactions are ignored. Transactions with
// an unknown payment method are reported as warnings.
func Recalculate(ledger models.Ledger, transactions []models.Transaction) ([]Discrepancy, []error) {
	computed := ledger.InitialBalances()

	var warnings []error
	for _, t := range transactions {
		if !t.Posted {
			continue
		}

		effects, err := ledger.Effects(t)
		if err != nil {
			warnings = append(warnings, err)
			continue
		}
		computed.Apply(effects)
	}

	var discrepancies []Discrepancy
	for code, a := range ledger.Accounts {
		if !a.Balance.Equal(computed[code]) {
			discrepancies = append(discrepancies, Discrepancy{Entity: models.EntityAccount, ID: a.ID, Code: code, Name: a.Name, Stored: a.Balance, Computed: computed[code]})
		}
	}

	for code, c := range ledger.Cards {
		if !c.Balance.Equal(computed[code]) {
			discrepancies = append(discrepancies, Discrepancy{Entity: models.EntityCreditCard, ID: c.ID, Code: code, Name: c.Name, Stored: c.Balance, Computed: computed[code]})
		}
	}

	slices.SortFunc(discrepancies, func(a, b Discrepancy) int {
		if a.Entity != b.Entity {
			if a.Entity == models.EntityAccount {
				return -1
			}
			return 1
		}

		if a.Code < b.Code {
			return -1
		} else if a.Code > b.Code {
			return 1
		}
		return 0
	})

	return discrepancies, warnings
}
