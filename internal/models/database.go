package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB is the database used by the forecast engine.
var DB *gorm.DB

type ForecastContext string

const (
	DBContextURL ForecastContext = "forecast-url"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{
			Logger: log.Logger,
		},
	}
}

// Connect opens the SQLite database and configures the connection pool.
func Connect(dsn string) error {
	config := gormConfig()

	// Migration with foreign keys disabled since tables may be
	// recreated during migration
	//
	// sqlite does not support ALTER COLUMN, so tables are copied to a temporary table,
	// then the table is dropped and recreated
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.Close()

	// Now, reconnect with foreign keys enabled
	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	db, err = gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err = db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	return setup(db)
}

// ConnectPostgres opens a PostgreSQL database with the given DSN.
func ConnectPostgres(dsn string) error {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	return setup(db)
}

// setup registers the callbacks and sets the exported DB variable.
func setup(db *gorm.DB) error {
	callbacks := []struct {
		processor interface {
			Register(string, func(*gorm.DB)) error
		}
		name string
		fn   func(*gorm.DB)
	}{
		{db.Callback().Query().After("*"), "forecast:after_query", queryCallback},
		{db.Callback().Query().After("*"), "forecast:after_query_general", generalCallback},
		{db.Callback().Create().After("*"), "forecast:after_create", createUpdateCallback},
		{db.Callback().Create().After("*"), "forecast:after_create_general", generalCallback},
		{db.Callback().Update().After("*"), "forecast:after_update", createUpdateCallback},
		{db.Callback().Update().After("*"), "forecast:after_update_general", generalCallback},
		{db.Callback().Delete().After("*"), "forecast:after_delete", deleteCallback},
		{db.Callback().Delete().After("*"), "forecast:after_delete_general", generalCallback},
	}

	for _, c := range callbacks {
		err := c.processor.Register(c.name, c.fn)
		if err != nil {
			return err
		}
	}

	// Set the exported variable
	DB = db

	return nil
}

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		match := regexp.MustCompile("ies$")
		name = match.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// uniqueViolations maps unique indexes to the errors reported for them.
//
// SQLite reports the columns of the index, PostgreSQL the index name.
var uniqueViolations = []struct {
	sqlite   string
	postgres string
	err      error
}{
	{"accounts.name", "idx_account_name", ErrAccountNameNotUnique},
	{"credit_cards.name", "idx_credit_card_name", ErrCreditCardNameNotUnique},
	{".pay_type_code", "_pay_type_code", ErrPayTypeCodeNotUnique},
	{"recurring_charges.name, recurring_charges.day_of_month, recurring_charges.payment_method", "idx_recurring_charge_identity", ErrRecurringChargeNotUnique},
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	msg := db.Error.Error()
	for _, v := range uniqueViolations {
		if strings.Contains(msg, "UNIQUE constraint failed: ") && strings.Contains(msg, v.sqlite) {
			db.Error = v.err
			return
		}

		if strings.Contains(msg, "duplicate key value violates unique constraint") && strings.Contains(msg, v.postgres) {
			db.Error = v.err
			return
		}
	}
}

// deleteCallback reports records that cannot be deleted because
// other records still reference them.
func deleteCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	if db.Statement.Table == "credit_cards" && strings.Contains(strings.ToLower(db.Error.Error()), "foreign key constraint") {
		db.Error = ErrCardStillReferenced
	}
}

// generalCallback handles unspecified errors.
//
// For these errors, we cannot provide the user with a helpful message.
// Instead, the error is logged and we return a general message to users.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in the sql module
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		// A general error where we cannot provide more useful information to the end user
		// We log the error and provide a general error message so that server admins can debug
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral

		return
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) (err error) {
	err = db.AutoMigrate(
		CreditCard{},
		Account{},
		Loan{},
		RecurringCharge{},
		Transaction{},
		PaycheckConfig{},
		PaycheckDeduction{},
		SharedExpense{},
		MatchRule{},
		DeferredPurchase{},
	)
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
