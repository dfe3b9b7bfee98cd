package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AmountType string

const (
	AmountTypeFixed       AmountType = "FIXED"
	AmountTypeCardBalance AmountType = "CREDIT_CARD_BALANCE"
	AmountTypeCalculated  AmountType = "CALCULATED"
)

const (
	// SpecialCodeMin is the smallest special day code.
	SpecialCodeMin = 991

	// SpecialCodeMax is the largest special day code.
	SpecialCodeMax = 999
)

// RecurringCharge is a template for transactions that repeat.
//
// DayOfMonth is either a calendar day (1-31) or a special code (991-999)
// selecting a non-monthly schedule.
type RecurringCharge struct {
	DefaultModel
	Name          string          `json:"name" gorm:"uniqueIndex:idx_recurring_charge_identity" example:"Rent"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,2)" example:"-1450.00"` // Negative for expenses, positive for income
	DayOfMonth    int             `json:"dayOfMonth" gorm:"uniqueIndex:idx_recurring_charge_identity" example:"1"`
	PaymentMethod string          `json:"paymentMethod" gorm:"uniqueIndex:idx_recurring_charge_identity" example:"C"` // Pay type code of the paying account or card
	AmountType    AmountType      `json:"amountType" example:"FIXED"`
	LinkedCardID  *uuid.UUID      `json:"linkedCardId" example:"a03ffd2e-3f04-4a41-bc39-3b0fe9c4ae66"` // Credit card this charge pays
	LinkedCard    *CreditCard     `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	LinkedLoanID  *uuid.UUID      `json:"linkedLoanId" example:"null"` // Loan this charge pays
	LinkedLoan    *Loan           `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Paused        bool            `json:"paused" example:"false" default:"false"` // Paused charges are not generated
	Note          string          `json:"note" example:"" default:""`
}

func (RecurringCharge) Self() string {
	return "Recurring Charge"
}

func (c *RecurringCharge) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)
	c.PaymentMethod = strings.TrimSpace(c.PaymentMethod)

	if c.Name == "" {
		return ValidationError{"recurring charge", "name", "must not be empty"}
	}

	if c.PaymentMethod == "" {
		return ValidationError{"recurring charge", "paymentMethod", "must not be empty"}
	}

	if _, err := c.Cadence(); err != nil {
		return err
	}

	if c.AmountType == "" {
		c.AmountType = AmountTypeFixed
	}

	switch c.AmountType {
	case AmountTypeFixed, AmountTypeCardBalance, AmountTypeCalculated:
	default:
		return ValidationError{"recurring charge", "amountType", "must be one of FIXED, CREDIT_CARD_BALANCE or CALCULATED"}
	}

	c.Amount = c.Amount.Round(2)
	return nil
}

// Cadence is the schedule of a recurring charge.
// It is either Monthly or Special.
type Cadence interface {
	cadence()
}

// Monthly charges occur once per month on Day, clipped to the month's last day.
type Monthly struct {
	Day int
}

// Special charges follow the schedule configured for Code.
type Special struct {
	Code int
}

func (Monthly) cadence() {}
func (Special) cadence() {}

// Cadence decodes the day of month of the charge.
func (c RecurringCharge) Cadence() (Cadence, error) {
	switch {
	case c.DayOfMonth >= 1 && c.DayOfMonth <= 31:
		return Monthly{Day: c.DayOfMonth}, nil
	case c.DayOfMonth >= SpecialCodeMin && c.DayOfMonth <= SpecialCodeMax:
		return Special{Code: c.DayOfMonth}, nil
	}

	return nil, ValidationError{"recurring charge", "dayOfMonth", "must be between 1 and 31 or a special code between 991 and 999"}
}

// AmountSource is where the amount of an occurrence comes from.
// It is either FixedAmount or CardMinimum.
type AmountSource interface {
	amountSource()
}

// FixedAmount occurrences use the stored amount.
type FixedAmount struct {
	Amount decimal.Decimal
}

// CardMinimum occurrences pay the minimum payment of the linked card.
type CardMinimum struct {
	CardID uuid.UUID
}

func (FixedAmount) amountSource() {}
func (CardMinimum) amountSource() {}

// AmountSource returns where the amount of the charge comes from.
//
// Only charges with the CREDIT_CARD_BALANCE or CALCULATED amount type
// that are linked to a card derive their amount from the card.
func (c RecurringCharge) AmountSource() AmountSource {
	if c.LinkedCardID != nil && (c.AmountType == AmountTypeCardBalance || c.AmountType == AmountTypeCalculated) {
		return CardMinimum{CardID: *c.LinkedCardID}
	}

	return FixedAmount{Amount: c.Amount}
}
