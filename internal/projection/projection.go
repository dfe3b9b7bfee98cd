package projection

import (
	"errors"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// DefaultWindow is the number of days the minimum balance alert looks ahead.
const DefaultWindow = 90

var ErrUntracked = errors.New("no balance is tracked for pay type code")

// BalancePoint is the state of all balances after one transaction.
type BalancePoint struct {
	Transaction models.Transaction `json:"transaction"`
	Balances    models.Balances    `json:"balances"`    // Cash on accounts, amount owed on cards
	Utilization models.Balances    `json:"utilization"` // Utilization of every card with a credit limit, in percent

	// TotalUtilization is the sum of all amounts owed as percentage of the
	// sum of all credit limits.
	TotalUtilization decimal.Decimal `json:"totalUtilization"`
}

// Projection is the sequence of balances resulting from a list of transactions.
type Projection struct {
	Start  models.Balances `json:"start"`
	Points []BalancePoint  `json:"points"`

	// Warnings are the transactions that could not be applied.
	Warnings []error `json:"-"`
}

// Minimum is the lowest balance within a window and the day it occurs.
type Minimum struct {
	Value decimal.Decimal `json:"value" example:"-500"`
	Date  time.Time       `json:"date" example:"2024-04-14T00:00:00Z"`
}

// Order sorts transactions by date. Transactions on the same day are
// sorted by amount, income before expenses. Transactions with equal date
// and amount keep their order.
func Order(transactions []models.Transaction) {
	slices.SortStableFunc(transactions, func(a, b models.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return b.Amount.Cmp(a.Amount)
	})
}

// Project walks the transactions in order and records the balances after
// each of them.
//
// The transactions are not modified. Transactions with an unknown payment
// method do not change any balance and are reported as warnings.
func Project(ledger models.Ledger, transactions []models.Transaction, start models.Balances) Projection {
	ordered := slices.Clone(transactions)
	Order(ordered)

	p := Projection{
		Start:  start.Clone(),
		Points: make([]BalancePoint, 0, len(ordered)),
	}

	balances := start.Clone()
	for _, t := range ordered {
		effects, err := ledger.Effects(t)
		if err != nil {
			p.Warnings = append(p.Warnings, err)
		}
		balances.Apply(effects)

		point := BalancePoint{
			Transaction: t,
			Balances:    balances.Clone(),
		}
		point.Utilization, point.TotalUtilization = utilization(ledger, balances)

		p.Points = append(p.Points, point)
	}

	return p
}

// utilization computes the utilization of every card and of all cards together.
func utilization(ledger models.Ledger, balances models.Balances) (models.Balances, decimal.Decimal) {
	perCard := make(models.Balances, len(ledger.Cards))
	owed, limits := decimal.Zero, decimal.Zero

	for code, card := range ledger.Cards {
		if !card.CreditLimit.IsPositive() {
			continue
		}

		perCard[code] = models.Utilization(balances[code], card.CreditLimit)
		owed = owed.Add(balances[code])
		limits = limits.Add(card.CreditLimit)
	}

	return perCard, models.Utilization(owed, limits)
}

// BalanceAt returns the balance for the code at the end of the day before date.
func (p Projection) BalanceAt(code string, date time.Time) decimal.Decimal {
	date = types.Day(date)

	balance := p.Start[code]
	for _, point := range p.Points {
		if !point.Transaction.Date.Before(date) {
			break
		}
		balance = point.Balances[code]
	}
	return balance
}

// Final returns the balances after the last transaction.
func (p Projection) Final() models.Balances {
	if len(p.Points) == 0 {
		return p.Start.Clone()
	}
	return p.Points[len(p.Points)-1].Balances.Clone()
}

func (p Projection) tracks(code string) bool {
	if _, ok := p.Start[code]; ok {
		return true
	}

	for _, point := range p.Points {
		if _, ok := point.Balances[code]; ok {
			return true
		}
	}
	return false
}

// MinimumInWindow returns the lowest balance for the code between from and
// from + days, both inclusive.
//
// The balance at the start of the window is the first candidate. On ties,
// the earliest date wins.
func (p Projection) MinimumInWindow(code string, from time.Time, days int) (Minimum, error) {
	if !p.tracks(code) {
		return Minimum{}, ErrUntracked
	}

	from = types.Day(from)
	until := from.AddDate(0, 0, days)

	minimum := Minimum{Value: p.BalanceAt(code, from), Date: from}
	for _, point := range p.Points {
		date := point.Transaction.Date
		if date.Before(from) {
			continue
		}
		if date.After(until) {
			break
		}

		if point.Balances[code].LessThan(minimum.Value) {
			minimum = Minimum{Value: point.Balances[code], Date: date}
		}
	}

	return minimum, nil
}

// FirstNegative returns the first day on or after from on which the
// balance for the code is below zero.
func (p Projection) FirstNegative(code string, from time.Time) (time.Time, bool) {
	from = types.Day(from)

	if p.BalanceAt(code, from).IsNegative() {
		return from, true
	}

	for _, point := range p.Points {
		if point.Transaction.Date.Before(from) {
			continue
		}

		if point.Balances[code].IsNegative() {
			return point.Transaction.Date, true
		}
	}

	return time.Time{}, false
}
