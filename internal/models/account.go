package models

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeCash     AccountType = "CASH"
)

// Account is a cash account. Its pay type code is the payment method
// that transactions use to reference it.
type Account struct {
	DefaultModel
	Name           string          `json:"name" gorm:"uniqueIndex:idx_account_name" example:"Checking"`          // Name of the account
	Type           AccountType     `json:"type" example:"CHECKING"`                                              // One of CHECKING, SAVINGS or CASH
	PayTypeCode    string          `json:"payTypeCode" gorm:"uniqueIndex:idx_account_pay_type_code" example:"C"` // Payment method code, unique across accounts, credit cards and loans
	InitialBalance decimal.Decimal `json:"initialBalance" gorm:"type:DECIMAL(20,2)" example:"2500.00"`           // Balance the account was opened with
	Balance        decimal.Decimal `json:"balance" gorm:"type:DECIMAL(20,2)" example:"1834.12"`                  // Current balance, including all posted transactions
	Note           string          `json:"note" example:"Main account, salary is paid here" default:""`          // A longer description

	balanceSet bool
}

func (Account) Self() string {
	return "Account"
}

// UnmarshalJSON records if the document sets the balance. An explicit
// balance is kept on creation, even when it is zero.
func (a *Account) UnmarshalJSON(data []byte) error {
	type account Account
	if err := json.Unmarshal(data, (*account)(a)); err != nil {
		return err
	}

	var err error
	a.balanceSet, err = hasBalance(data)
	return err
}

// BeforeCreate sets the balance to the initial balance unless it was set.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if !a.balanceSet && a.Balance.IsZero() {
		a.Balance = a.InitialBalance
	}

	return a.DefaultModel.BeforeCreate(tx)
}

func (a *Account) BeforeSave(tx *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)
	a.PayTypeCode = strings.TrimSpace(a.PayTypeCode)

	if a.Type == "" {
		a.Type = AccountTypeChecking
	}

	switch a.Type {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCash:
	default:
		return ValidationError{"account", "type", "must be one of CHECKING, SAVINGS or CASH"}
	}

	if a.Name == "" {
		return ValidationError{"account", "name", "must not be empty"}
	}

	if a.PayTypeCode == "" {
		return ValidationError{"account", "payTypeCode", "must not be empty"}
	}

	a.InitialBalance = a.InitialBalance.Round(2)
	a.Balance = a.Balance.Round(2)

	return checkPayTypeCode(tx, "accounts", a.PayTypeCode)
}

// PrimaryAccount returns the account that receives paychecks and pays
// shared expenses.
//
// If code is set, the account with that pay type code is used. Otherwise,
// the first checking account by name is the primary account.
func PrimaryAccount(db *gorm.DB, code string) (Account, error) {
	var account Account

	if code != "" {
		err := db.Where(&Account{PayTypeCode: code}).First(&account).Error
		return account, err
	}

	err := db.Where(&Account{Type: AccountTypeChecking}).Order("name ASC").First(&account).Error
	if errors.Is(err, ErrResourceNotFound) {
		// Fall back to any account
		err = db.Order("name ASC").First(&account).Error
	}

	return account, err
}

// payTypeCodeTables are the tables whose pay type codes share one namespace.
var payTypeCodeTables = []string{"accounts", "credit_cards", "loans"}

// checkPayTypeCode verifies that no record in another table uses the code.
//
// Uniqueness inside of the own table is enforced by a unique index.
func checkPayTypeCode(tx *gorm.DB, own, code string) error {
	for _, table := range payTypeCodeTables {
		if table == own {
			continue
		}

		var count int64
		err := tx.Table(table).Where("pay_type_code = ?", code).Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return ErrPayTypeCodeNotUnique
		}
	}

	return nil
}
