package projection

import (
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"gorm.io/gorm"
)

// Forecast is the projection of all unposted transactions, starting from the
// stored balances.
type Forecast struct {
	Projection
	Ledger models.Ledger `json:"-"`
	From   time.Time     `json:"from"`
}

// Load projects all unposted transactions onto the stored balances.
//
// Unposted transactions dated before from are part of the projection,
// they are still expected to happen.
func Load(db *gorm.DB, from time.Time) (Forecast, error) {
	ledger, err := models.LoadLedger(db)
	if err != nil {
		return Forecast{}, err
	}

	var transactions []models.Transaction
	err = db.Where(map[string]any{"posted": false}).Order(models.TransactionOrder).Find(&transactions).Error
	if err != nil {
		return Forecast{}, err
	}

	return Forecast{
		Projection: Project(ledger, transactions, ledger.StoredBalances()),
		Ledger:     ledger,
		From:       types.Day(from),
	}, nil
}

// Audit loads all posted transactions and recalculates the balances.
func Audit(db *gorm.DB) ([]Discrepancy, []error, error) {
	ledger, err := models.LoadLedger(db)
	if err != nil {
		return nil, nil, err
	}

	var posted []models.Transaction
	err = db.Where(map[string]any{"posted": true}).Order(models.TransactionOrder).Find(&posted).Error
	if err != nil {
		return nil, nil, err
	}

	discrepancies, warnings := Recalculate(ledger, posted)
	return discrepancies, warnings, nil
}
