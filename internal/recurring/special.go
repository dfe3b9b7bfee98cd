package recurring

import (
	"fmt"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/shopspring/decimal"
)

// biweekly is the interval of biweekly special charges in days.
const biweekly = 14

// Expand returns the occurrences in [from, until) of a charge with a
// special cadence.
//
// Biweekly charges use the payday anchor. Shared and payday codes never
// produce occurrences here since their own generators emit them.
func Expand(charge models.RecurringCharge, codes CodeTable, anchor, from, until time.Time, ledger models.Ledger) ([]Occurrence, error) {
	if charge.Paused {
		return nil, nil
	}

	cadence, err := charge.Cadence()
	if err != nil {
		return nil, err
	}

	special, ok := cadence.(models.Special)
	if !ok {
		return nil, nil
	}

	code, ok := codes.Lookup(special.Code)
	if !ok {
		return nil, reference(charge, fmt.Sprintf("special code %d", special.Code))
	}

	if code.Kind == KindShared || code.Kind == KindPayday {
		return nil, nil
	}

	if !ledger.Knows(charge.PaymentMethod) {
		return nil, reference(charge, charge.PaymentMethod)
	}

	if code.Kind == KindLoan {
		return expandLoan(charge, code, from, until, ledger)
	}

	amount, err := ResolveAmount(charge, ledger)
	if err != nil {
		return nil, err
	}

	var dates []time.Time
	switch code.Kind {
	case KindBiweekly:
		dates = Paydays(anchor, biweekly, from, until)
	case KindMonthly:
		dates = monthlyDates(code.Day, from, until)
	}

	occurrences := make([]Occurrence, 0, len(dates))
	for _, date := range dates {
		occurrences = append(occurrences, occurrence(charge, date, amount))
	}

	return occurrences, nil
}

// expandLoan emits monthly payments from the start date of the loan on,
// until the projected loan balance is zero or the end date has passed.
// The final payment covers only the remaining balance and interest.
func expandLoan(charge models.RecurringCharge, code Code, from, until time.Time, ledger models.Ledger) ([]Occurrence, error) {
	if charge.LinkedLoanID == nil {
		return nil, reference(charge, "loan")
	}

	loan, ok := ledger.Loans[*charge.LinkedLoanID]
	if !ok {
		return nil, reference(charge, charge.LinkedLoanID.String())
	}

	day := code.Day
	if day == 0 {
		day = loan.PaymentDay
	}
	if day == 0 {
		day = 1
	}

	payment := charge.Amount.Abs()
	if payment.IsZero() {
		payment = loan.PaymentAmount
	}

	var occurrences []Occurrence
	for _, date := range monthlyDates(day, from, until) {
		if !loan.Balance.IsPositive() || !payment.IsPositive() {
			break
		}

		if loan.EndDate != nil && date.After(*loan.EndDate) {
			break
		}

		if !loan.Active(date) {
			continue
		}

		due := loan.Balance.Add(loan.MonthlyInterest())
		pay := decimal.Min(payment, due)
		loan.ApplyPayment(pay)

		occurrences = append(occurrences, occurrence(charge, date, pay.Neg()))
	}

	return occurrences, nil
}

// monthlyDates returns the day in each month that lies in [from, until).
func monthlyDates(day int, from, until time.Time) []time.Time {
	from = types.Day(from)
	until = types.Day(until)

	var dates []time.Time
	for month := types.MonthOf(from); month.FirstDay().Before(until); month = month.AddDate(0, 1) {
		date := month.Day(day)
		if !date.Before(from) && date.Before(until) {
			dates = append(dates, date)
		}
	}

	return dates
}

func occurrence(charge models.RecurringCharge, date time.Time, amount decimal.Decimal) Occurrence {
	id := charge.ID
	return Occurrence{
		ChargeID:      &id,
		Date:          date,
		Description:   charge.Name,
		Amount:        amount,
		PaymentMethod: charge.PaymentMethod,
	}
}
