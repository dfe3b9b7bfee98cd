package payoff

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// MaxMonths is the number of months after which a simulation gives up.
const MaxMonths = 600

var ErrUnknownStrategy = errors.New("unknown payoff strategy")

// Card is the state of a credit card for a payoff simulation.
type Card struct {
	ID               uuid.UUID             `json:"id"`
	Name             string                `json:"name"`
	Balance          decimal.Decimal       `json:"balance"`
	InterestRate     decimal.Decimal       `json:"interestRate"`
	CreditLimit      decimal.Decimal       `json:"creditLimit"`
	MinPaymentType   models.MinPaymentType `json:"minPaymentType"`
	MinPaymentAmount decimal.Decimal       `json:"minPaymentAmount"`
}

// Utilization is the balance as percentage of the credit limit.
func (c Card) Utilization() decimal.Decimal {
	return models.Utilization(c.Balance, c.CreditLimit)
}

// MinPayment is the minimum payment due on the current balance.
func (c Card) MinPayment() decimal.Decimal {
	return models.MinimumPayment(c.MinPaymentType, c.MinPaymentAmount, c.Balance, c.InterestRate)
}

// Payment is one payment on a card in a simulated month.
type Payment struct {
	Month     time.Time       `json:"month" example:"2024-04-01T00:00:00Z"`
	CardID    uuid.UUID       `json:"cardId"`
	Card      string          `json:"card" example:"Visa"`
	Amount    decimal.Decimal `json:"amount" example:"120.5"`
	Interest  decimal.Decimal `json:"interest" example:"20.83"` // Part of the payment covering this month's interest
	Principal decimal.Decimal `json:"principal" example:"99.67"`
	Remaining decimal.Decimal `json:"remaining" example:"900.33"`
	Extra     bool            `json:"extra" example:"false"` // Payment from the budget left after all minimum payments
}

// Schedule is the result of a payoff simulation.
type Schedule struct {
	Strategy      Strategy        `json:"strategy" example:"AVALANCHE"`
	Description   string          `json:"description"`
	Payments      []Payment       `json:"payments"`
	PayoffOrder   []string        `json:"payoffOrder"`
	PayoffMonth   time.Time       `json:"payoffMonth" example:"2025-06-01T00:00:00Z"` // Month of the last payment
	Months        int             `json:"months" example:"15"`
	TotalInterest decimal.Decimal `json:"totalInterest" example:"193.12"`
	TotalPaid     decimal.Decimal `json:"totalPaid" example:"2393.12"`

	// Converged is false when the cards are not paid off after MaxMonths
	Converged bool `json:"converged" example:"true"`
}

// MarshalJSON adds the average monthly payment.
func (s Schedule) MarshalJSON() ([]byte, error) {
	type schedule Schedule
	return json.Marshal(struct {
		schedule
		AveragePayment decimal.Decimal `json:"averagePayment"`
	}{schedule(s), s.AveragePayment()})
}

// AveragePayment is the total paid per simulated month.
func (s Schedule) AveragePayment() decimal.Decimal {
	if s.Months == 0 {
		return decimal.Zero
	}
	return s.TotalPaid.Div(decimal.NewFromInt(int64(s.Months))).Round(2)
}

type card struct {
	Card
	interest decimal.Decimal
}

// CardsFrom returns the payoff state of all cards with a balance.
func CardsFrom(cards []models.CreditCard) []Card {
	var result []Card
	for _, c := range cards {
		if !c.Balance.IsPositive() {
			continue
		}

		result = append(result, Card{
			ID:               c.ID,
			Name:             c.Name,
			Balance:          c.Balance,
			InterestRate:     c.InterestRate,
			CreditLimit:      c.CreditLimit,
			MinPaymentType:   c.MinPaymentType,
			MinPaymentAmount: c.MinPaymentAmount,
		})
	}
	return result
}

// Load reads all credit cards with a balance, ordered by name.
func Load(db *gorm.DB) ([]Card, error) {
	var cards []models.CreditCard
	err := db.Order("name ASC").Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return CardsFrom(cards), nil
}

// Plan simulates paying off the cards month by month, starting in the
// month of start.
//
// Every month, interest accrues on all balances, then the minimum payment
// of every card is paid. The budget left is paid to the cards in the order
// of the strategy, moving on to the next card when one is paid off. If the
// budget does not cover all minimum payments, only the minimums are paid.
func Plan(cards []Card, strategy Strategy, budget decimal.Decimal, start time.Time) (Schedule, error) {
	if !slices.Contains(Strategies, strategy) {
		return Schedule{}, ErrUnknownStrategy
	}

	s := Schedule{
		Strategy:      strategy,
		Description:   strategy.Description(),
		PayoffMonth:   types.MonthOf(start).FirstDay(),
		TotalInterest: decimal.Zero,
		TotalPaid:     decimal.Zero,
	}

	var active []*card
	for _, c := range cards {
		if c.Balance.IsPositive() {
			active = append(active, &card{Card: c})
		}
	}

	for month := types.MonthOf(start); len(active) > 0 && s.Months < MaxMonths; month = month.AddDate(0, 1) {
		s.Months++
		s.PayoffMonth = month.FirstDay()

		for _, c := range active {
			c.interest = models.MonthlyInterest(c.Balance, c.InterestRate)
			c.Balance = c.Balance.Add(c.interest)
			s.TotalInterest = s.TotalInterest.Add(c.interest)
		}

		order := strategy.order(active)

		extra := budget
		for _, c := range active {
			minimum := decimal.Min(c.MinPayment(), c.Balance)
			extra = extra.Sub(minimum)
			s.pay(c, month, minimum, false)
		}

		for _, c := range order {
			if !extra.IsPositive() {
				break
			}
			if !c.Balance.IsPositive() {
				continue
			}

			amount := decimal.Min(extra, c.Balance)
			extra = extra.Sub(amount)
			s.pay(c, month, amount, true)
		}

		remaining := active[:0]
		for _, c := range active {
			if c.Balance.IsPositive() {
				remaining = append(remaining, c)
				continue
			}
			s.PayoffOrder = append(s.PayoffOrder, c.Name)
		}
		active = remaining
	}

	s.Converged = len(active) == 0
	return s, nil
}

// pay records a payment. Interest accrued this month is paid off first.
func (s *Schedule) pay(c *card, month types.Month, amount decimal.Decimal, extra bool) {
	if !amount.IsPositive() {
		return
	}

	interest := decimal.Min(c.interest, amount)
	c.interest = c.interest.Sub(interest)
	c.Balance = c.Balance.Sub(amount)

	s.TotalPaid = s.TotalPaid.Add(amount)
	s.Payments = append(s.Payments, Payment{
		Month:     month.FirstDay(),
		CardID:    c.ID,
		Card:      c.Name,
		Amount:    amount,
		Interest:  interest,
		Principal: amount.Sub(interest),
		Remaining: c.Balance,
		Extra:     extra,
	})
}

// Compare simulates all strategies. The schedules are sorted by the total
// interest paid, lowest first.
func Compare(cards []Card, budget decimal.Decimal, start time.Time) []Schedule {
	schedules := make([]Schedule, 0, len(Strategies))
	for _, strategy := range Strategies {
		s, _ := Plan(cards, strategy, budget, start)
		schedules = append(schedules, s)
	}

	slices.SortStableFunc(schedules, func(a, b Schedule) int {
		return a.TotalInterest.Cmp(b.TotalInterest)
	})
	return schedules
}
