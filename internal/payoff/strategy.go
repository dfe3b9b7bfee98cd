package payoff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Strategy decides which cards receive the budget left after all minimum
// payments.
type Strategy string

const (
	Avalanche       Strategy = "AVALANCHE"
	Snowball        Strategy = "SNOWBALL"
	Hybrid          Strategy = "HYBRID"
	HighUtilization Strategy = "HIGH_UTILIZATION"
	CashOnHand      Strategy = "CASH_ON_HAND"
)

// Strategies are all available strategies.
var Strategies = []Strategy{Avalanche, Snowball, Hybrid, HighUtilization, CashOnHand}

var (
	hybridRateWeight    = decimal.NewFromFloat(0.6)
	hybridBalanceWeight = decimal.NewFromFloat(0.4)
)

// ParseStrategy parses a strategy name, ignoring case.
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if !slices.Contains(Strategies, strategy) {
		return "", fmt.Errorf("%w: '%s'", ErrUnknownStrategy, s)
	}
	return strategy, nil
}

// Description explains the strategy.
func (s Strategy) Description() string {
	switch s {
	case Avalanche:
		return "Highest interest rate first, minimizes the interest paid"
	case Snowball:
		return "Lowest balance first, pays off cards quickly"
	case Hybrid:
		return "Weighs interest rate with 60% and low balance with 40%"
	case HighUtilization:
		return "Highest utilization first, lowers utilization fastest"
	case CashOnHand:
		return "Minimum payments only, keeps the most cash available"
	}
	return ""
}

// order returns the cards in the order they receive extra payments.
// Cards with equal priority keep their order.
func (s Strategy) order(cards []*card) []*card {
	if s == CashOnHand {
		return nil
	}

	ordered := slices.Clone(cards)

	switch s {
	case Avalanche:
		slices.SortStableFunc(ordered, func(a, b *card) int {
			return b.InterestRate.Cmp(a.InterestRate)
		})
	case Snowball:
		slices.SortStableFunc(ordered, func(a, b *card) int {
			return a.Balance.Cmp(b.Balance)
		})
	case HighUtilization:
		slices.SortStableFunc(ordered, func(a, b *card) int {
			return b.Utilization().Cmp(a.Utilization())
		})
	case Hybrid:
		scores := hybridScores(ordered)
		slices.SortStableFunc(ordered, func(a, b *card) int {
			return scores[b].Cmp(scores[a])
		})
	}

	return ordered
}

// hybridScores rates the cards by their normalized interest rate and
// their normalized inverse balance.
func hybridScores(cards []*card) map[*card]decimal.Decimal {
	maxRate, maxBalance := decimal.Zero, decimal.Zero
	for _, c := range cards {
		maxRate = decimal.Max(maxRate, c.InterestRate)
		maxBalance = decimal.Max(maxBalance, c.Balance)
	}

	if maxRate.IsZero() {
		maxRate = decimal.NewFromInt(1)
	}
	if maxBalance.IsZero() {
		maxBalance = decimal.NewFromInt(1)
	}

	scores := make(map[*card]decimal.Decimal, len(cards))
	for _, c := range cards {
		rate := c.InterestRate.Div(maxRate)
		quickWin := decimal.NewFromInt(1).Sub(c.Balance.Div(maxBalance))
		scores[c] = hybridRateWeight.Mul(rate).Add(hybridBalanceWeight.Mul(quickWin))
	}
	return scores
}
