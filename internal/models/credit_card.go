package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MinPaymentType string

const (
	MinPaymentFixed       MinPaymentType = "FIXED"
	MinPaymentFullBalance MinPaymentType = "FULL_BALANCE"
	MinPaymentCalculated  MinPaymentType = "CALCULATED"
)

var (
	twelve     = decimal.NewFromInt(12)
	hundred    = decimal.NewFromInt(100)
	onePercent = decimal.NewFromFloat(0.01)
	minFloor   = decimal.NewFromInt(25)
)

// CreditCard is a revolving credit line. Balance is the amount owed.
type CreditCard struct {
	DefaultModel
	Name             string          `json:"name" gorm:"uniqueIndex:idx_credit_card_name" example:"Visa"`
	PayTypeCode      string          `json:"payTypeCode" gorm:"uniqueIndex:idx_credit_card_pay_type_code" example:"V"`
	CreditLimit      decimal.Decimal `json:"creditLimit" gorm:"type:DECIMAL(20,2)" example:"5000.00"`
	InitialBalance   decimal.Decimal `json:"initialBalance" gorm:"type:DECIMAL(20,2)" example:"1200.00"`
	Balance          decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,2)" example:"1000.00"`
	InterestRate     decimal.Decimal `json:"interestRate" gorm:"type:DECIMAL(10,6)" example:"0.2299"` // APR as a fraction
	DueDay           int             `json:"dueDay" example:"15"`                                     // Day of month the payment is due, 0 if unknown
	MinPaymentType   MinPaymentType  `json:"minPaymentType" example:"CALCULATED"`
	MinPaymentAmount decimal.Decimal `json:"minPaymentAmount" gorm:"type:DECIMAL(20,2)" example:"35.00"` // Only used for the FIXED policy

	balanceSet bool
}

func (CreditCard) Self() string {
	return "Credit Card"
}

func (c *CreditCard) UnmarshalJSON(data []byte) error {
	type creditCard CreditCard
	if err := json.Unmarshal(data, (*creditCard)(c)); err != nil {
		return err
	}

	var err error
	c.balanceSet, err = hasBalance(data)
	return err
}

func (c *CreditCard) BeforeCreate(tx *gorm.DB) error {
	if !c.balanceSet && c.Balance.IsZero() {
		c.Balance = c.InitialBalance
	}

	return c.DefaultModel.BeforeCreate(tx)
}

func (c *CreditCard) BeforeSave(tx *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.PayTypeCode = strings.TrimSpace(c.PayTypeCode)

	if c.Name == "" {
		return ValidationError{"credit card", "name", "must not be empty"}
	}

	if c.PayTypeCode == "" {
		return ValidationError{"credit card", "payTypeCode", "must not be empty"}
	}

	if c.MinPaymentType == "" {
		c.MinPaymentType = MinPaymentCalculated
	}

	switch c.MinPaymentType {
	case MinPaymentFixed, MinPaymentFullBalance, MinPaymentCalculated:
	default:
		return ValidationError{"credit card", "minPaymentType", "must be one of FIXED, FULL_BALANCE or CALCULATED"}
	}

	if c.DueDay < 0 || c.DueDay > 31 {
		return ValidationError{"credit card", "dueDay", "must be between 0 and 31"}
	}

	if c.CreditLimit.IsNegative() {
		return ValidationError{"credit card", "creditLimit", "must not be negative"}
	}

	if c.InterestRate.IsNegative() {
		return ValidationError{"credit card", "interestRate", "must not be negative"}
	}

	c.CreditLimit = c.CreditLimit.Round(2)
	c.InitialBalance = c.InitialBalance.Round(2)
	c.Balance = c.Balance.Round(2)
	c.MinPaymentAmount = c.MinPaymentAmount.Round(2)

	if c.Balance.IsNegative() {
		return ValidationError{"credit card", "balance", "must not be negative"}
	}

	return checkPayTypeCode(tx, "credit_cards", c.PayTypeCode)
}

// AvailableCredit is the credit limit minus the balance.
// It is negative when the card is over its limit.
func (c CreditCard) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.Balance)
}

// Utilization is the balance as percentage of the credit limit,
// rounded to two places. It is zero for cards without a limit.
func (c CreditCard) Utilization() decimal.Decimal {
	return Utilization(c.Balance, c.CreditLimit)
}

// MonthlyInterest is the interest accruing on the current balance in one month.
func (c CreditCard) MonthlyInterest() decimal.Decimal {
	return MonthlyInterest(c.Balance, c.InterestRate)
}

// MinPayment is the minimum payment due on the current balance.
func (c CreditCard) MinPayment() decimal.Decimal {
	return MinimumPayment(c.MinPaymentType, c.MinPaymentAmount, c.Balance, c.InterestRate)
}

// Utilization returns balance/limit in percent.
func Utilization(balance, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}

	return balance.Div(limit).Mul(hundred).Round(2)
}

// MonthlyInterest returns balance × apr / 12, rounded to cents.
func MonthlyInterest(balance, apr decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}

	return balance.Mul(apr).Div(twelve).Round(2)
}

// MinimumPayment computes the minimum payment for a balance.
//
//   - FULL_BALANCE is the whole balance
//   - FIXED is the fixed amount, capped at the balance
//   - CALCULATED is 1% of the balance plus one month of interest,
//     but at least 25 or the balance, whichever is smaller
//
// A FIXED policy without an amount falls back to CALCULATED.
func MinimumPayment(policy MinPaymentType, fixed, balance, apr decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() {
		return decimal.Zero
	}

	switch policy {
	case MinPaymentFullBalance:
		return balance
	case MinPaymentFixed:
		if fixed.IsPositive() {
			return decimal.Min(fixed, balance)
		}
	}

	calculated := balance.Mul(onePercent).Add(balance.Mul(apr).Div(twelve))
	return decimal.Max(calculated, decimal.Min(minFloor, balance)).Round(2)
}

// CardDeletion configures what happens to records that reference a
// credit card when it is deleted.
type CardDeletion struct {
	// ReassignTo is the card that recurring charges and transactions
	// are moved to. If nil, they are removed.
	ReassignTo *uuid.UUID

	// DeleteTransactions removes the card's transactions even if
	// ReassignTo is set.
	DeleteTransactions bool
}

// DeleteCreditCard deletes a credit card and all references to it.
//
// Recurring charges linked to the card are relinked to the target card
// or unlinked. Recurring charges and transactions paid with the card are
// moved to the target card or deleted. All of this happens atomically.
func DeleteCreditCard(db *gorm.DB, id uuid.UUID, opts CardDeletion) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var card CreditCard
		err := tx.First(&card, "id = ?", id).Error
		if err != nil {
			return err
		}

		var target *CreditCard
		if opts.ReassignTo != nil {
			if *opts.ReassignTo == card.ID {
				return ValidationError{"credit card deletion", "reassignTo", "must be a different card"}
			}

			target = &CreditCard{}
			err := tx.First(target, "id = ?", *opts.ReassignTo).Error
			if err != nil {
				return err
			}
		}

		if target != nil {
			err = tx.Model(&RecurringCharge{}).Where("linked_card_id = ?", card.ID).UpdateColumn("linked_card_id", target.ID).Error
			if err != nil {
				return err
			}

			err = tx.Model(&RecurringCharge{}).Where("payment_method = ?", card.PayTypeCode).UpdateColumn("payment_method", target.PayTypeCode).Error
			if err != nil {
				return err
			}
		} else {
			err = tx.Model(&RecurringCharge{}).Where("linked_card_id = ?", card.ID).UpdateColumn("linked_card_id", nil).Error
			if err != nil {
				return err
			}

			err = tx.Where("payment_method = ?", card.PayTypeCode).Delete(&RecurringCharge{}).Error
			if err != nil {
				return err
			}
		}

		if target != nil && !opts.DeleteTransactions {
			err = tx.Model(&Transaction{}).Where("payment_method = ?", card.PayTypeCode).UpdateColumn("payment_method", target.PayTypeCode).Error
		} else {
			err = tx.Where("payment_method = ?", card.PayTypeCode).Delete(&Transaction{}).Error
		}
		if err != nil {
			return err
		}

		return tx.Delete(&card).Error
	})
}

// SyncLinkedCharges aligns all recurring charges linked to the card with it.
//
// Linked charges with a monthly cadence are moved to the card's due day
// and their amount is derived from the card balance.
// It returns the number of updated charges.
func SyncLinkedCharges(db *gorm.DB, card CreditCard) (int64, error) {
	var charges []RecurringCharge
	err := db.Where("linked_card_id = ?", card.ID).Find(&charges).Error
	if err != nil {
		return 0, err
	}

	var updated int64
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, charge := range charges {
			if card.DueDay > 0 && charge.DayOfMonth <= 31 {
				charge.DayOfMonth = card.DueDay
			}
			charge.AmountType = AmountTypeCardBalance

			err := tx.Save(&charge).Error
			if err != nil {
				return err
			}
			updated++
		}
		return nil
	})

	return updated, err
}
