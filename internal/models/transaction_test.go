package models_test

import (
	"errors"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var postedDate = time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC)

func (suite *TestSuiteStandard) TestTransactionDateIsCalendarDay() {
	transaction := suite.createTestTransaction(models.Transaction{
		Date:          time.Date(2024, 3, 15, 17, 45, 0, 0, time.UTC),
		PaymentMethod: "C",
		Amount:        decimal.NewFromFloat(-12.345),
	})

	suite.Assert().Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), transaction.Date)
	suite.Assert().True(decimal.NewFromFloat(-12.35).Equal(transaction.Amount), "Amount is %s", transaction.Amount)
}

func (suite *TestSuiteStandard) TestTransactionPostedDateOnlyWhenPosted() {
	d := time.Now()
	transaction := suite.createTestTransaction(models.Transaction{PaymentMethod: "C", PostedDate: &d})
	suite.Assert().Nil(transaction.PostedDate)
}

func (suite *TestSuiteStandard) TestPostTransactionAccount() {
	account := suite.createTestAccount(models.Account{PayTypeCode: "C", InitialBalance: decimal.NewFromInt(1000)})
	transaction := suite.createTestTransaction(models.Transaction{PaymentMethod: "C", Amount: decimal.NewFromInt(-200), Description: "Groceries"})

	posted, err := models.PostTransaction(models.DB, transaction.ID, postedDate)
	suite.Require().Nil(err)
	suite.Assert().True(posted.Posted)
	if suite.Assert().NotNil(posted.PostedDate) {
		suite.Assert().Equal(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), *posted.PostedDate)
	}

	suite.Require().Nil(models.DB.First(&account, "id = ?", account.ID).Error)
	suite.Assert().True(decimal.NewFromInt(800).Equal(account.Balance), "Balance is %s", account.Balance)

	// Posting again is rejected and does not change the balance
	_, err = models.PostTransaction(models.DB, transaction.ID, postedDate)
	suite.Assert().ErrorIs(err, models.ErrAlreadyPosted)

	suite.Require().Nil(models.DB.First(&account, "id = ?", account.ID).Error)
	suite.Assert().True(decimal.NewFromInt(800).Equal(account.Balance), "Balance is %s", account.Balance)
}

func (suite *TestSuiteStandard) TestPostTransactionCreditCard() {
	card := suite.createTestCreditCard(models.CreditCard{PayTypeCode: "V", InitialBalance: decimal.NewFromInt(100)})
	transaction := suite.createTestTransaction(models.Transaction{PaymentMethod: "V", Amount: decimal.NewFromInt(-50)})

	_, err := models.PostTransaction(models.DB, transaction.ID, postedDate)
	suite.Require().Nil(err)

	suite.Require().Nil(models.DB.First(&card, "id = ?", card.ID).Error)
	suite.Assert().True(decimal.NewFromInt(150).Equal(card.Balance), "A charge increases the amount owed, it is %s", card.Balance)
}

func (suite *TestSuiteStandard) TestPostTransactionCardPayment() {
	account := suite.createTestAccount(models.Account{PayTypeCode: "C", InitialBalance: decimal.NewFromInt(1000)})
	card := suite.createTestCreditCard(models.CreditCard{Name: "Visa", PayTypeCode: "V", InitialBalance: decimal.NewFromInt(300)})
	charge := suite.createTestRecurringCharge(models.RecurringCharge{Name: "Visa Payment", PaymentMethod: "C", LinkedCardID: &card.ID})

	byCharge := suite.createTestTransaction(models.Transaction{PaymentMethod: "C", Amount: decimal.NewFromInt(-100), Description: "Visa Payment", RecurringChargeID: &charge.ID})
	byName := suite.createTestTransaction(models.Transaction{PaymentMethod: "C", Amount: decimal.NewFromInt(-50), Description: "Visa Payment"})

	for _, t := range []models.Transaction{byCharge, byName} {
		_, err := models.PostTransaction(models.DB, t.ID, postedDate)
		suite.Require().Nil(err)
	}

	suite.Require().Nil(models.DB.First(&account, "id = ?", account.ID).Error)
	suite.Assert().True(decimal.NewFromInt(850).Equal(account.Balance), "Account balance is %s", account.Balance)

	suite.Require().Nil(models.DB.First(&card, "id = ?", card.ID).Error)
	suite.Assert().True(decimal.NewFromInt(150).Equal(card.Balance), "Amount owed is %s", card.Balance)
}

func (suite *TestSuiteStandard) TestPostTransactionOverpaymentRollsBack() {
	account := suite.createTestAccount(models.Account{PayTypeCode: "C", InitialBalance: decimal.NewFromInt(1000)})
	card := suite.createTestCreditCard(models.CreditCard{Name: "Visa", PayTypeCode: "V", InitialBalance: decimal.NewFromInt(30)})
	_ = suite.createTestRecurringCharge(models.RecurringCharge{Name: "Visa Payment", PaymentMethod: "C", LinkedCardID: &card.ID})
	transaction := suite.createTestTransaction(models.Transaction{PaymentMethod: "C", Amount: decimal.NewFromInt(-100), Description: "Visa Payment"})

	_, err := models.PostTransaction(models.DB, transaction.ID, postedDate)

	var validationErr models.ValidationError
	suite.Assert().True(errors.As(err, &validationErr), "Error is %v", err)

	suite.Require().Nil(models.DB.First(&account, "id = ?", account.ID).Error)
	suite.Assert().True(decimal.NewFromInt(1000).Equal(account.Balance), "Account balance must be unchanged, is %s", account.Balance)

	suite.Require().Nil(models.DB.First(&transaction, "id = ?", transaction.ID).Error)
	suite.Assert().False(transaction.Posted)
}

func (suite *TestSuiteStandard) TestPostTransactionUnknownMethod() {
	transaction := suite.createTestTransaction(models.Transaction{PaymentMethod: "Q", Amount: decimal.NewFromInt(-10)})

	_, err := models.PostTransaction(models.DB, transaction.ID, postedDate)

	var referenceErr models.ReferenceError
	if suite.Assert().True(errors.As(err, &referenceErr), "Error is %v", err) {
		suite.Assert().Equal("Q", referenceErr.Reference)
	}

	suite.Require().Nil(models.DB.First(&transaction, "id = ?", transaction.ID).Error)
	suite.Assert().False(transaction.Posted)
}

func (suite *TestSuiteStandard) TestPostTransactionMatchRule() {
	_ = suite.createTestAccount(models.Account{PayTypeCode: "C"})
	charge := suite.createTestRecurringCharge(models.RecurringCharge{Name: "Netflix", PaymentMethod: "C"})
	_ = suite.createTestMatchRule(models.MatchRule{RecurringChargeID: charge.ID, Match: "Netflix*", Priority: 1})

	transaction := suite.createTestTransaction(models.Transaction{PaymentMethod: "C", Amount: decimal.NewFromInt(-15), Description: "Netflix Subscription"})

	posted, err := models.PostTransaction(models.DB, transaction.ID, postedDate)
	suite.Require().Nil(err)
	if suite.Assert().NotNil(posted.RecurringChargeID) {
		suite.Assert().Equal(charge.ID, *posted.RecurringChargeID)
	}
}

func (suite *TestSuiteStandard) TestPostTransactionLoanPayment() {
	_ = suite.createTestAccount(models.Account{PayTypeCode: "C", InitialBalance: decimal.NewFromInt(1000)})
	loan := suite.createTestLoan(models.Loan{Name: "Car", Principal: decimal.NewFromInt(1000), InterestRate: decimal.NewFromFloat(0.12)})
	charge := suite.createTestRecurringCharge(models.RecurringCharge{Name: "Car Loan", PaymentMethod: "C", LinkedLoanID: &loan.ID})

	transaction := suite.createTestTransaction(models.Transaction{PaymentMethod: "C", Amount: decimal.NewFromInt(-110), RecurringChargeID: &charge.ID})

	_, err := models.PostTransaction(models.DB, transaction.ID, postedDate)
	suite.Require().Nil(err)

	suite.Require().Nil(models.DB.First(&loan, "id = ?", loan.ID).Error)
	suite.Assert().True(decimal.NewFromInt(900).Equal(loan.Balance), "Loan balance is %s", loan.Balance)
}

func (suite *TestSuiteStandard) TestPostTransactionNotFound() {
	_, err := models.PostTransaction(models.DB, uuid.New(), postedDate)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestCheckTransactionUpdate() {
	posted := postedDate
	other := postedDate.AddDate(0, 0, 2)

	stored := models.Transaction{Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(-100), PaymentMethod: "C", Posted: true, PostedDate: &posted}

	tests := []struct {
		name   string
		update func(t *models.Transaction)
		err    error
	}{
		{"Note", func(t *models.Transaction) { t.Note = "Weekly" }, nil},
		{"Same amount, other precision", func(t *models.Transaction) { t.Amount = decimal.NewFromFloat(-100.001) }, nil},
		{"Amount", func(t *models.Transaction) { t.Amount = decimal.NewFromInt(-50) }, models.ErrPostedTransaction},
		{"Payment method", func(t *models.Transaction) { t.PaymentMethod = "V" }, models.ErrPostedTransaction},
		{"Date", func(t *models.Transaction) { t.Date = t.Date.AddDate(0, 0, 1) }, models.ErrPostedTransaction},
		{"Unpost", func(t *models.Transaction) { t.Posted = false }, models.ValidationError{}},
		{"Posted date", func(t *models.Transaction) { t.PostedDate = &other }, models.ValidationError{}},
		{"No posted date", func(t *models.Transaction) { t.PostedDate = nil }, models.ValidationError{}},
	}

	for _, tt := range tests {
		updated := stored
		tt.update(&updated)

		err := models.CheckTransactionUpdate(stored, updated)
		switch tt.err.(type) {
		case nil:
			suite.Assert().Nil(err, tt.name)
		case models.ValidationError:
			suite.Assert().True(errors.As(err, &models.ValidationError{}), "%s: %v", tt.name, err)
		default:
			suite.Assert().ErrorIs(err, tt.err, tt.name)
		}
	}

	// Unposted transactions can change, but not become posted
	unposted := models.Transaction{Date: stored.Date, Amount: stored.Amount, PaymentMethod: "C"}
	updated := unposted
	updated.Amount = decimal.NewFromInt(-200)
	suite.Assert().Nil(models.CheckTransactionUpdate(unposted, updated))

	updated.Posted = true
	suite.Assert().NotNil(models.CheckTransactionUpdate(unposted, updated))

	suite.Assert().NotNil(models.CheckNewTransaction(models.Transaction{Posted: true}))
	suite.Assert().NotNil(models.CheckNewTransaction(models.Transaction{PostedDate: &posted}))
	suite.Assert().Nil(models.CheckNewTransaction(unposted))
}
