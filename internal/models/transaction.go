package models

import (
	"strings"
	"time"

	"github.com/envelope-zero/forecast/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionOrder is the order transactions are read in. Transactions
// created in one batch share their creation time, the ID breaks the tie.
const TransactionOrder = "date ASC, created_at ASC, id ASC"

// Transaction is a single movement of money on an account or credit card.
type Transaction struct {
	DefaultModel
	Date              time.Time        `json:"date" gorm:"index" example:"2024-03-15T00:00:00Z"` // Calendar day of the transaction, always UTC midnight
	Description       string           `json:"description" example:"Rent"`
	Amount            decimal.Decimal  `json:"amount" gorm:"type:DECIMAL(20,2)" example:"-1450.00"` // Negative for expenses, positive for income
	PaymentMethod     string           `json:"paymentMethod" gorm:"index" example:"C"`              // Pay type code of the account or card
	RecurringChargeID *uuid.UUID       `json:"recurringChargeId" example:"null"`                    // Recurring charge this transaction was generated from or matched to
	RecurringCharge   *RecurringCharge `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Posted            bool             `json:"posted" gorm:"index" example:"false" default:"false"` // Posted transactions are part of the stored balances
	PostedDate        *time.Time       `json:"postedDate" example:"null"`
	Note              string           `json:"note" example:"" default:""`
}

func (Transaction) Self() string {
	return "Transaction"
}

// AfterFind updates the timestamps to use UTC as
// timezone, not +0000. Yes, this is different.
//
// We already store them in UTC, but somehow reading
// them from the database returns them as +0000.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.DefaultModel.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	if t.PostedDate != nil {
		d := t.PostedDate.In(time.UTC)
		t.PostedDate = &d
	}

	return nil
}

// BeforeSave sets the date to the calendar day in UTC and
// rounds the amount.
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Description = strings.TrimSpace(t.Description)
	t.PaymentMethod = strings.TrimSpace(t.PaymentMethod)
	t.Note = strings.TrimSpace(t.Note)

	if t.Date.IsZero() {
		t.Date = types.Day(time.Now())
	} else {
		t.Date = types.Day(t.Date)
	}

	if t.PaymentMethod == "" {
		return ValidationError{"transaction", "paymentMethod", "must not be empty"}
	}

	t.Amount = t.Amount.Round(2)

	if !t.Posted {
		t.PostedDate = nil
	} else if t.PostedDate != nil {
		d := types.Day(*t.PostedDate)
		t.PostedDate = &d
	}

	return nil
}

// CheckNewTransaction rejects transactions that are created as posted.
// Transactions only become posted through PostTransaction, which updates
// the stored balances.
func CheckNewTransaction(t Transaction) error {
	if t.Posted || t.PostedDate != nil {
		return ValidationError{"transaction", "posted", "can only be set by posting the transaction"}
	}
	return nil
}

// CheckTransactionUpdate verifies that an update does not change the
// posting state, and that it does not change anything the stored
// balances depend on for a posted transaction.
func CheckTransactionUpdate(stored, updated Transaction) error {
	postedDateChanged := (stored.PostedDate == nil) != (updated.PostedDate == nil) ||
		(stored.PostedDate != nil && !types.Day(*stored.PostedDate).Equal(types.Day(*updated.PostedDate)))

	if stored.Posted != updated.Posted || postedDateChanged {
		return ValidationError{"transaction", "posted", "can only be set by posting the transaction"}
	}

	if !stored.Posted {
		return nil
	}

	if !types.Day(stored.Date).Equal(types.Day(updated.Date)) ||
		!stored.Amount.Equal(updated.Amount.Round(2)) ||
		stored.PaymentMethod != strings.TrimSpace(updated.PaymentMethod) {
		return ErrPostedTransaction
	}

	return nil
}

// PostTransaction marks a transaction as posted and applies its effects
// to the stored balances.
//
// A transaction without recurring charge is bound to one by the match
// rules first. A payment towards a loan reduces its balance by the
// principal part. The flag and all balances change in one database
// transaction, or not at all.
func PostTransaction(db *gorm.DB, id uuid.UUID, postedDate time.Time) (Transaction, error) {
	var transaction Transaction

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&transaction, "id = ?", id).Error
		if err != nil {
			return err
		}

		if transaction.Posted {
			return ErrAlreadyPosted
		}

		if transaction.RecurringChargeID == nil {
			transaction.RecurringChargeID, err = MatchRecurringCharge(tx, transaction.Description)
			if err != nil {
				return err
			}
		}

		ledger, err := LoadLedger(tx)
		if err != nil {
			return err
		}

		effects, err := ledger.Effects(transaction)
		if err != nil {
			return err
		}

		for _, effect := range effects {
			err = applyEffect(tx, ledger, effect)
			if err != nil {
				return err
			}
		}

		if loan, ok := ledger.LoanFor(transaction); ok && transaction.Amount.IsNegative() {
			loan.ApplyPayment(transaction.Amount.Neg())
			err = tx.Save(&loan).Error
			if err != nil {
				return err
			}
		}

		day := types.Day(postedDate)
		transaction.Posted = true
		transaction.PostedDate = &day

		return tx.Save(&transaction).Error
	})

	return transaction, err
}

func applyEffect(tx *gorm.DB, ledger Ledger, effect Effect) error {
	switch effect.Kind {
	case EntityAccount:
		account := ledger.Accounts[effect.Code]
		account.Balance = account.Balance.Add(effect.Delta)
		return tx.Save(&account).Error
	case EntityCreditCard:
		card := ledger.Cards[effect.Code]
		card.Balance = card.Balance.Add(effect.Delta)
		return tx.Save(&card).Error
	}

	return nil
}
