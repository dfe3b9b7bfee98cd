package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/envelope-zero/forecast/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxLoanPayments bounds the amortization of a loan.
const maxLoanPayments = 1200

// Loan is an amortizing loan with fixed monthly payments.
type Loan struct {
	DefaultModel
	Name          string          `json:"name" example:"Car"`
	PayTypeCode   string          `json:"payTypeCode" gorm:"uniqueIndex:idx_loan_pay_type_code" example:"L1"`
	Principal     decimal.Decimal `json:"principal" gorm:"type:DECIMAL(20,2)" example:"18000.00"`
	Balance       decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,2)" example:"12450.33"`
	InterestRate  decimal.Decimal `json:"interestRate" gorm:"type:DECIMAL(10,6)" example:"0.0649"` // Annual rate as a fraction
	PaymentAmount decimal.Decimal `json:"paymentAmount" gorm:"type:DECIMAL(20,2)" example:"352.10"`
	PaymentDay    int             `json:"paymentDay" example:"5"`
	StartDate     *time.Time      `json:"startDate" example:"2022-06-01T00:00:00Z"` // First day a payment is due, null if payments are due already
	EndDate       *time.Time      `json:"endDate" example:"2027-05-01T00:00:00Z"`   // Last day a payment is due, null if payments end with the balance

	balanceSet bool
}

func (Loan) Self() string {
	return "Loan"
}

func (l *Loan) UnmarshalJSON(data []byte) error {
	type loan Loan
	if err := json.Unmarshal(data, (*loan)(l)); err != nil {
		return err
	}

	var err error
	l.balanceSet, err = hasBalance(data)
	return err
}

// BeforeCreate sets the balance to the principal unless a balance was set.
func (l *Loan) BeforeCreate(tx *gorm.DB) error {
	if !l.balanceSet && l.Balance.IsZero() {
		l.Balance = l.Principal
	}

	return l.DefaultModel.BeforeCreate(tx)
}

func (l *Loan) AfterFind(tx *gorm.DB) error {
	err := l.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	l.StartDate = utcDay(l.StartDate)
	l.EndDate = utcDay(l.EndDate)
	return nil
}

func (l *Loan) BeforeSave(tx *gorm.DB) error {
	l.Name = strings.TrimSpace(l.Name)
	l.PayTypeCode = strings.TrimSpace(l.PayTypeCode)
	l.StartDate = utcDay(l.StartDate)
	l.EndDate = utcDay(l.EndDate)

	if l.StartDate != nil && l.EndDate != nil && l.EndDate.Before(*l.StartDate) {
		return ValidationError{"loan", "endDate", "must not be before the start date"}
	}

	if l.PayTypeCode == "" {
		return ValidationError{"loan", "payTypeCode", "must not be empty"}
	}

	if l.PaymentDay < 0 || l.PaymentDay > 31 {
		return ValidationError{"loan", "paymentDay", "must be between 0 and 31"}
	}

	if l.InterestRate.IsNegative() {
		return ValidationError{"loan", "interestRate", "must not be negative"}
	}

	if l.PaymentAmount.IsNegative() {
		return ValidationError{"loan", "paymentAmount", "must not be negative"}
	}

	l.Principal = l.Principal.Round(2)
	l.Balance = l.Balance.Round(2)
	l.PaymentAmount = l.PaymentAmount.Round(2)

	if l.Balance.IsNegative() {
		return ValidationError{"loan", "balance", "must not be negative"}
	}

	return checkPayTypeCode(tx, "loans", l.PayTypeCode)
}

// MarshalJSON adds the number of remaining payments.
func (l Loan) MarshalJSON() ([]byte, error) {
	type loan Loan
	return json.Marshal(struct {
		loan
		RemainingPayments int `json:"remainingPayments"` // -1 if the payment does not cover the interest
	}{loan(l), l.RemainingPayments()})
}

// utcDay returns the calendar day of an optional date.
func utcDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	d := types.Day(*t)
	return &d
}

// Active reports if a payment is due on the date according to the start
// and end dates of the loan.
func (l Loan) Active(date time.Time) bool {
	date = types.Day(date)
	if l.StartDate != nil && date.Before(*l.StartDate) {
		return false
	}
	return l.EndDate == nil || !date.After(*l.EndDate)
}

// MonthlyInterest is the interest accruing on the balance in one month.
func (l Loan) MonthlyInterest() decimal.Decimal {
	return MonthlyInterest(l.Balance, l.InterestRate)
}

// ApplyPayment splits a payment into interest and principal and reduces
// the balance by the principal part. The balance never drops below zero.
func (l *Loan) ApplyPayment(payment decimal.Decimal) (interest, principal decimal.Decimal) {
	interest = l.MonthlyInterest()
	principal = decimal.Max(payment.Sub(interest), decimal.Zero)

	if principal.GreaterThan(l.Balance) {
		principal = l.Balance
	}

	l.Balance = l.Balance.Sub(principal)
	return interest, principal
}

// RemainingPayments is the number of monthly payments until the loan is
// paid off. It is -1 if the payment does not cover the interest.
func (l Loan) RemainingPayments() int {
	loan := l
	for n := 0; n < maxLoanPayments; n++ {
		if !loan.Balance.IsPositive() {
			return n
		}

		_, principal := loan.ApplyPayment(loan.PaymentAmount)
		if !principal.IsPositive() {
			return -1
		}
	}

	return -1
}
