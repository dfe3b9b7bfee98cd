package generator_test

import (
	"context"
	"errors"

	"github.com/envelope-zero/forecast/internal/generator"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var march = generator.Options{HorizonMonths: 1, AsOf: date(2024, 3, 1)}

type expected struct {
	date        string
	description string
	amount      string
	method      string
}

func (suite *TestSuiteStandard) TestGenerate() {
	suite.createHousehold()

	result, err := generator.New(models.DB).Generate(context.Background(), march)
	suite.Require().Nil(err)
	suite.Assert().Equal(11, result.Created)
	suite.Assert().Equal(0, result.Skipped)
	suite.Assert().Empty(result.Warnings)

	want := []expected{
		{"2024-03-01", "Payday", "2000", "C"},
		{"2024-03-01", "Shared Expenses", "-833.33", "C"},
		{"2024-03-01", "Rent", "-1450", "C"},
		{"2024-03-14", "LDBPD", "0", "C"},
		{"2024-03-15", "Payday", "2000", "C"},
		{"2024-03-15", "Shared Expenses", "-833.33", "C"},
		{"2024-03-20", "Visa Payment", "-30", "C"},
		{"2024-03-23", "Visa Interest", "-19.4", "V"},
		{"2024-03-28", "LDBPD", "0", "C"},
		{"2024-03-29", "Payday", "2000", "C"},
		{"2024-03-29", "Shared Expenses", "-833.34", "C"},
	}

	transactions := suite.transactions()
	suite.Require().Len(transactions, len(want))

	for i, w := range want {
		t := transactions[i]
		suite.Assert().Equal(w.date, t.Date.Format("2006-01-02"), "Transaction %d", i)
		suite.Assert().Equal(w.description, t.Description, "Transaction %d", i)
		suite.Assert().True(decimal.RequireFromString(w.amount).Equal(t.Amount), "Transaction %d: amount is %s, expected %s", i, t.Amount, w.amount)
		suite.Assert().Equal(w.method, t.PaymentMethod, "Transaction %d", i)
		suite.Assert().False(t.Posted)
	}
}

func (suite *TestSuiteStandard) TestGenerateIdempotent() {
	suite.createHousehold()
	g := generator.New(models.DB)

	first, err := g.Generate(context.Background(), march)
	suite.Require().Nil(err)
	before := suite.transactions()

	second, err := g.Generate(context.Background(), march)
	suite.Require().Nil(err)
	after := suite.transactions()

	suite.Assert().Equal(first.Created, second.Created)
	suite.Require().Len(after, len(before))

	for i := range before {
		suite.Assert().Equal(before[i].Date, after[i].Date)
		suite.Assert().Equal(before[i].Description, after[i].Description)
		suite.Assert().True(before[i].Amount.Equal(after[i].Amount))
	}
}

func (suite *TestSuiteStandard) TestGenerateSkipsPosted() {
	suite.createHousehold()

	var rent models.RecurringCharge
	suite.Require().Nil(models.DB.First(&rent, "name = ?", "Rent").Error)

	posted := models.Transaction{Date: date(2024, 3, 1), Description: "Rent", Amount: decimal.NewFromInt(-1450), PaymentMethod: "C", RecurringChargeID: &rent.ID, Posted: true}
	manual := models.Transaction{Date: date(2024, 3, 15), Description: "Payday", Amount: decimal.NewFromInt(1987), PaymentMethod: "C", Posted: true}
	suite.create(&posted, &manual)

	result, err := generator.New(models.DB).Generate(context.Background(), march)
	suite.Require().Nil(err)
	suite.Assert().Equal(2, result.Skipped)
	suite.Assert().Equal(9, result.Created)

	var count int64
	models.DB.Model(&models.Transaction{}).Where("description = ?", "Rent").Count(&count)
	suite.Assert().Equal(int64(1), count, "Rent must not be generated twice")

	models.DB.Model(&models.Transaction{}).Where("description = ?", "Payday").Count(&count)
	suite.Assert().Equal(int64(3), count, "The manually posted payday replaces the generated one")
}

func (suite *TestSuiteStandard) TestGenerateCleanup() {
	_ = suite.createAccount()

	old := models.Transaction{Date: date(2024, 2, 10), Description: "Before the window", PaymentMethod: "C"}
	stale := models.Transaction{Date: date(2024, 3, 10), Description: "Entered by hand", PaymentMethod: "C"}
	posted := models.Transaction{Date: date(2024, 3, 5), Description: "Posted", PaymentMethod: "C", Posted: true}
	suite.create(&old, &stale, &posted)

	_, err := generator.New(models.DB).Generate(context.Background(), march)
	suite.Require().Nil(err)

	suite.Assert().Nil(models.DB.First(&models.Transaction{}, "id = ?", old.ID).Error, "Transactions before the window are kept")
	suite.Assert().Nil(models.DB.First(&models.Transaction{}, "id = ?", posted.ID).Error, "Posted transactions are kept")
	suite.Assert().ErrorIs(models.DB.First(&models.Transaction{}, "id = ?", stale.ID).Error, models.ErrResourceNotFound, "Unposted transactions in the window are replaced")
}

func (suite *TestSuiteStandard) TestGenerateReferenceWarning() {
	_ = suite.createAccount()
	suite.create(
		&models.RecurringCharge{Name: "Rent", Amount: decimal.NewFromInt(-1450), DayOfMonth: 1, PaymentMethod: "C"},
		&models.RecurringCharge{Name: "Old card", Amount: decimal.NewFromInt(-20), DayOfMonth: 3, PaymentMethod: "Z"},
	)

	result, err := generator.New(models.DB).Generate(context.Background(), march)
	suite.Require().Nil(err)
	suite.Assert().Equal(1, result.Created)
	suite.Require().Len(result.Warnings, 1)

	var referenceErr models.ReferenceError
	if suite.Assert().True(errors.As(result.Warnings[0], &referenceErr)) {
		suite.Assert().Equal("Z", referenceErr.Reference)
	}
}

func (suite *TestSuiteStandard) TestGenerateCancelled() {
	suite.createHousehold()
	stale := models.Transaction{Date: date(2024, 3, 10), Description: "Entered by hand", PaymentMethod: "C"}
	suite.create(&stale)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generator.New(models.DB).Generate(ctx, march)
	suite.Assert().NotNil(err)

	suite.Assert().Nil(models.DB.First(&models.Transaction{}, "id = ?", stale.ID).Error, "Nothing is deleted")
	suite.Assert().Len(suite.transactions(), 1)
}

func (suite *TestSuiteStandard) TestGenerateRollback() {
	suite.createHousehold()
	stale := models.Transaction{Date: date(2024, 3, 10), Description: "Entered by hand", PaymentMethod: "C"}
	suite.create(&stale)

	err := models.DB.Callback().Create().Before("gorm:create").Register("test:fail_insert", func(db *gorm.DB) {
		if db.Statement.Table == "transactions" {
			_ = db.AddError(errors.New("disk full"))
		}
	})
	suite.Require().Nil(err)

	_, err = generator.New(models.DB).Generate(context.Background(), march)
	suite.Assert().NotNil(err)

	suite.Assert().Nil(models.DB.First(&models.Transaction{}, "id = ?", stale.ID).Error, "The deletion is rolled back")
	suite.Assert().Len(suite.transactions(), 1)
}

func (suite *TestSuiteStandard) TestGenerateProgress() {
	suite.createHousehold()

	var calls [][2]int
	g := generator.New(models.DB)
	g.BatchSize = 4
	g.Progress = func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}

	_, err := g.Generate(context.Background(), march)
	suite.Require().Nil(err)
	suite.Assert().Equal([][2]int{{4, 11}, {8, 11}, {11, 11}}, calls)
}

func (suite *TestSuiteStandard) createAccount() models.Account {
	account := models.Account{Name: "Checking", PayTypeCode: "C", InitialBalance: decimal.NewFromInt(2000)}
	suite.create(&account)
	return account
}
