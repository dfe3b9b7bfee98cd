package models_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/shopspring/decimal"
)

func (suite *TestSuiteStandard) TestAccountTrimWhitespace() {
	name := "\t Whitespace galore!   "
	note := " Some more whitespace in the notes    "
	code := "  C  "

	account := suite.createTestAccount(models.Account{
		Name:        name,
		Note:        note,
		PayTypeCode: code,
	})

	suite.Assert().Equal(strings.TrimSpace(name), account.Name)
	suite.Assert().Equal(strings.TrimSpace(note), account.Note)
	suite.Assert().Equal("C", account.PayTypeCode)
}

func (suite *TestSuiteStandard) TestAccountDefaults() {
	account := suite.createTestAccount(models.Account{
		InitialBalance: decimal.NewFromFloat(170.456),
	})

	suite.Assert().Equal(models.AccountTypeChecking, account.Type)
	suite.Assert().True(decimal.NewFromFloat(170.46).Equal(account.InitialBalance), "Initial balance is %s", account.InitialBalance)
	suite.Assert().True(account.InitialBalance.Equal(account.Balance), "Balance is %s", account.Balance)
}

func (suite *TestSuiteStandard) TestAccountValidation() {
	tests := []struct {
		name    string
		account models.Account
		field   string
	}{
		{"Unknown type", models.Account{Name: "Test", PayTypeCode: "T", Type: "BROKERAGE"}, "type"},
		{"No name", models.Account{PayTypeCode: "T"}, "name"},
		{"No code", models.Account{Name: "Test"}, "payTypeCode"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			err := models.DB.Create(&tt.account).Error

			var validationErr models.ValidationError
			if suite.Assert().True(errors.As(err, &validationErr), "Error is %v", err) {
				suite.Assert().Equal(tt.field, validationErr.Field)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAccountNameNotUnique() {
	_ = suite.createTestAccount(models.Account{Name: "Checking"})

	err := models.DB.Create(&models.Account{Name: "Checking", PayTypeCode: "X"}).Error
	suite.Assert().ErrorIs(err, models.ErrAccountNameNotUnique)
}

func (suite *TestSuiteStandard) TestPayTypeCodeNotUnique() {
	_ = suite.createTestAccount(models.Account{PayTypeCode: "C"})

	err := models.DB.Create(&models.Account{Name: "Savings", PayTypeCode: "C"}).Error
	suite.Assert().ErrorIs(err, models.ErrPayTypeCodeNotUnique, "Account with duplicate code")

	err = models.DB.Create(&models.CreditCard{Name: "Visa", PayTypeCode: "C"}).Error
	suite.Assert().ErrorIs(err, models.ErrPayTypeCodeNotUnique, "Credit card with code of an account")

	_ = suite.createTestCreditCard(models.CreditCard{PayTypeCode: "V"})
	err = models.DB.Create(&models.Account{Name: "Cash", PayTypeCode: "V"}).Error
	suite.Assert().ErrorIs(err, models.ErrPayTypeCodeNotUnique, "Account with code of a credit card")

	err = models.DB.Create(&models.Loan{Name: "Car", PayTypeCode: "V"}).Error
	suite.Assert().ErrorIs(err, models.ErrPayTypeCodeNotUnique, "Loan with code of a credit card")
}

func (suite *TestSuiteStandard) TestPrimaryAccount() {
	_ = suite.createTestAccount(models.Account{Name: "Savings", Type: models.AccountTypeSavings})
	b := suite.createTestAccount(models.Account{Name: "B Checking", PayTypeCode: "B"})
	a := suite.createTestAccount(models.Account{Name: "A Checking", PayTypeCode: "A"})

	primary, err := models.PrimaryAccount(models.DB, "")
	suite.Require().Nil(err)
	suite.Assert().Equal(a.ID, primary.ID)

	primary, err = models.PrimaryAccount(models.DB, "B")
	suite.Require().Nil(err)
	suite.Assert().Equal(b.ID, primary.ID)

	_, err = models.PrimaryAccount(models.DB, "Z")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestAccountDBClosed() {
	suite.CloseDB()

	err := models.DB.Create(&models.Account{Name: "Test", PayTypeCode: "T"}).Error
	suite.Assert().ErrorIs(err, models.ErrGeneral)
}
