package generator

import (
	"fmt"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/recurring"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

const (
	// DefaultHorizon is the number of months generated by default.
	DefaultHorizon = 12

	// interestDelay is the number of days after the due day that
	// interest is charged.
	interestDelay = 3

	DescriptionPayday   = "Payday"
	DescriptionShared   = "Shared Expenses"
	DescriptionLDBPD    = "LDBPD"
	descriptionInterest = "%s Interest"
)

// Options configure a generation run.
type Options struct {
	// HorizonMonths is the number of months to generate, starting at AsOf.
	HorizonMonths int

	// AsOf is the first day of the generated window.
	AsOf time.Time
}

// Window returns the generated window [start, end).
func (o Options) Window() (start, end time.Time) {
	horizon := o.HorizonMonths
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	asOf := o.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	start = types.Day(asOf)
	return start, start.AddDate(0, horizon, 0)
}

// Plan is the set of transactions a generation run creates.
type Plan struct {
	Occurrences []recurring.Occurrence

	// Skipped is the number of occurrences that were already posted.
	Skipped int

	// Warnings are the records that could not be generated.
	Warnings []error
}

// Transactions returns the planned occurrences as unposted transactions.
func (p Plan) Transactions() []models.Transaction {
	transactions := make([]models.Transaction, 0, len(p.Occurrences))
	for _, o := range p.Occurrences {
		transactions = append(transactions, o.Transaction())
	}
	return transactions
}

type planner struct {
	in    Input
	codes recurring.CodeTable
	start time.Time
	end   time.Time
	plan  Plan
}

// NewPlan computes the transactions to generate. It does not access the
// database and has no side effects.
func NewPlan(in Input, codes recurring.CodeTable, opts Options) Plan {
	start, end := opts.Window()
	p := planner{in: in, codes: codes, start: start, end: end}

	p.monthly()
	p.special()
	p.paydays()
	p.interest()

	slices.SortStableFunc(p.plan.Occurrences, func(a, b recurring.Occurrence) int {
		return a.Date.Compare(b.Date)
	})

	return p.plan
}

// anchor returns the payday anchor.
func (p *planner) anchor() time.Time {
	if p.in.Paycheck == nil {
		return p.start
	}
	return p.in.Paycheck.Anchor(p.start)
}

func (p *planner) inWindow(date time.Time) bool {
	return !date.Before(p.start) && date.Before(p.end)
}

// add plans the occurrence unless it has been posted already.
func (p *planner) add(o recurring.Occurrence) {
	if p.in.Posted.Has(o) {
		p.plan.Skipped++
		return
	}
	p.plan.Occurrences = append(p.plan.Occurrences, o)
}

func (p *planner) warn(err error) {
	p.plan.Warnings = append(p.plan.Warnings, err)
}

// monthly resolves all charges with a monthly cadence for every month
// of the window.
func (p *planner) monthly() {
	snapshot := recurring.Snapshot{
		Ledger: p.in.Ledger,
		Shared: p.in.sharedCharges(),
		Posted: p.in.Posted,
	}

	for _, charge := range p.in.Charges {
		for month := types.MonthOf(p.start); month.FirstDay().Before(p.end); month = month.AddDate(0, 1) {
			occurrence, outcome, err := recurring.Resolve(charge, month, snapshot)
			if err != nil {
				p.warn(err)
				break
			}

			if outcome != recurring.OutcomeEmit && outcome != recurring.OutcomePosted {
				break
			}

			if !p.inWindow(occurrence.Date) {
				continue
			}

			if outcome == recurring.OutcomePosted {
				p.plan.Skipped++
				continue
			}

			p.plan.Occurrences = append(p.plan.Occurrences, occurrence)
		}
	}
}

// special expands all charges with a special cadence.
func (p *planner) special() {
	shared := p.in.sharedCharges()
	anchor := p.anchor()

	for _, charge := range p.in.Charges {
		if shared[charge.ID] {
			continue
		}

		occurrences, err := recurring.Expand(charge, p.codes, anchor, p.start, p.end, p.in.Ledger)
		if err != nil {
			p.warn(err)
			continue
		}

		for _, o := range occurrences {
			p.add(o)
		}
	}
}

// paydays plans the paychecks, the pay period markers and the shared
// expense installments.
func (p *planner) paydays() {
	paycheck := p.in.Paycheck
	if paycheck == nil {
		return
	}

	deposit := paycheck.DepositTo
	if deposit == "" {
		deposit = p.in.Primary
	}

	if !p.in.Ledger.Knows(deposit) {
		p.warn(models.ReferenceError{Resource: "paycheck configuration", ID: paycheck.ID, Name: DescriptionPayday, Reference: deposit})
		return
	}

	anchor := p.anchor()
	interval := paycheck.Interval()
	net := paycheck.NetPay()

	for _, payday := range recurring.Paydays(anchor, interval, p.start, p.end) {
		p.add(recurring.Occurrence{Date: payday, Description: DescriptionPayday, Amount: net, PaymentMethod: deposit})

		if marker := payday.AddDate(0, 0, -1); p.inWindow(marker) {
			p.add(recurring.Occurrence{Date: marker, Description: DescriptionLDBPD, Amount: decimal.Zero, PaymentMethod: deposit})
		}
	}

	p.shared(anchor, interval)
}

// shared plans one installment of all shared expenses on every payday.
//
// The installments of a month are computed from the number of paydays in
// the whole calendar month, also for the first month of the window.
func (p *planner) shared(anchor time.Time, interval int) {
	if len(p.in.Shared) == 0 {
		return
	}

	if !p.in.Ledger.Knows(p.in.Primary) {
		p.warn(models.ReferenceError{Resource: "shared expense", ID: p.in.Shared[0].ID, Name: DescriptionShared, Reference: p.in.Primary})
		return
	}

	charges := p.in.chargesByID()

	for month := types.MonthOf(p.start); month.FirstDay().Before(p.end); month = month.AddDate(0, 1) {
		paydays := recurring.Paydays(anchor, interval, month.FirstDay(), month.AddDate(0, 1).FirstDay())

		installments := make([]decimal.Decimal, len(paydays))
		for _, expense := range p.in.Shared {
			split := recurring.Split(expense.Monthly(charges), len(paydays), expense.SplitType, expense.CustomSplitRatio)
			for i, amount := range split {
				installments[i] = installments[i].Add(amount)
			}
		}

		for i, payday := range paydays {
			if !p.inWindow(payday) || installments[i].IsZero() {
				continue
			}

			p.add(recurring.Occurrence{Date: payday, Description: DescriptionShared, Amount: installments[i].Neg(), PaymentMethod: p.in.Primary})
		}
	}
}

// interest plans the interest charges of all credit cards.
//
// Interest is charged a few days after the due day on the amount owed at
// the end of the previous day, as projected from the stored balance and
// all transactions planned before.
func (p *planner) interest() {
	codes := make([]string, 0, len(p.in.Ledger.Cards))
	for code := range p.in.Ledger.Cards {
		codes = append(codes, code)
	}
	slices.Sort(codes)

	for _, code := range codes {
		card := p.in.Ledger.Cards[code]
		if card.DueDay == 0 || !card.InterestRate.IsPositive() {
			continue
		}

		// The previous month's interest may fall into the window
		var dates []time.Time
		for month := types.MonthOf(p.start).AddDate(0, -1); month.FirstDay().Before(p.end); month = month.AddDate(0, 1) {
			date := month.Day(card.DueDay).AddDate(0, 0, interestDelay)
			if p.inWindow(date) {
				dates = append(dates, date)
			}
		}

		for _, date := range dates {
			owed := p.owed(card, date)
			interest := models.MonthlyInterest(owed, card.InterestRate)
			if !interest.IsPositive() {
				continue
			}

			charge := recurring.Occurrence{
				Date:          date,
				Description:   fmt.Sprintf(descriptionInterest, card.Name),
				Amount:        interest.Neg(),
				PaymentMethod: card.PayTypeCode,
			}
			p.add(charge)
		}
	}
}

// owed projects the amount owed on a card at the end of the day before date.
//
// Posted transactions are part of the stored balance, so only planned
// occurrences are applied.
func (p *planner) owed(card models.CreditCard, date time.Time) decimal.Decimal {
	owed := card.Balance

	for _, o := range p.plan.Occurrences {
		if !o.Date.Before(date) {
			continue
		}

		effects, err := p.in.Ledger.Effects(o.Transaction())
		if err != nil {
			continue
		}

		for _, e := range effects {
			if e.Kind == models.EntityCreditCard && e.Code == card.PayTypeCode {
				owed = owed.Add(e.Delta)
			}
		}
	}

	return owed
}
