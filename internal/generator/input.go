package generator

import (
	"errors"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/recurring"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Input is everything a plan is computed from.
type Input struct {
	Ledger   models.Ledger
	Charges  []models.RecurringCharge
	Paycheck *models.PaycheckConfig
	Shared   []models.SharedExpense
	Posted   recurring.PostedKeys

	// Primary is the pay type code of the primary account. Paychecks
	// without deposit account and shared expenses use it.
	Primary string
}

// Load reads the input for a plan from the database.
//
// primary selects the primary account by pay type code. If it is empty,
// the first checking account is used.
func Load(db *gorm.DB, primary string) (Input, error) {
	ledger, err := models.LoadLedger(db)
	if err != nil {
		return Input{}, err
	}

	in := Input{Ledger: ledger}

	err = db.Order("name ASC, day_of_month ASC, payment_method ASC").Find(&in.Charges).Error
	if err != nil {
		return Input{}, err
	}

	err = db.Order("name ASC").Find(&in.Shared).Error
	if err != nil {
		return Input{}, err
	}

	paycheck, err := models.CurrentPaycheck(db)
	if err == nil {
		in.Paycheck = &paycheck
	} else if !errors.Is(err, models.ErrResourceNotFound) {
		return Input{}, err
	}

	var posted []models.Transaction
	err = db.Where(&models.Transaction{Posted: true}).Find(&posted).Error
	if err != nil {
		return Input{}, err
	}
	in.Posted = recurring.NewPostedKeys(posted)

	account, err := models.PrimaryAccount(db, primary)
	if err == nil {
		in.Primary = account.PayTypeCode
	} else if !errors.Is(err, models.ErrResourceNotFound) {
		return Input{}, err
	}

	return in, nil
}

// sharedCharges returns the IDs of all charges linked to a shared expense.
func (in Input) sharedCharges() map[uuid.UUID]bool {
	shared := make(map[uuid.UUID]bool, len(in.Shared))
	for _, s := range in.Shared {
		if s.LinkedRecurringID != nil {
			shared[*s.LinkedRecurringID] = true
		}
	}
	return shared
}

// chargesByID indexes the charges by their ID.
func (in Input) chargesByID() map[uuid.UUID]models.RecurringCharge {
	charges := make(map[uuid.UUID]models.RecurringCharge, len(in.Charges))
	for _, c := range in.Charges {
		charges[c.ID] = c
	}
	return charges
}
