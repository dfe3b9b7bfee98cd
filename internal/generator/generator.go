package generator

import (
	"context"
	"fmt"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/recurring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DefaultBatchSize is the number of transactions inserted per batch.
const DefaultBatchSize = 100

// Progress is called after every inserted batch with the number of
// inserted and total transactions.
type Progress func(done, total int)

// Result summarizes a generation run.
type Result struct {
	Created  int     `json:"created" example:"148"`
	Skipped  int     `json:"skipped" example:"3"`
	Warnings []error `json:"-"`
}

// Generator materializes recurring charges, paychecks, shared expenses
// and credit card interest as unposted transactions.
type Generator struct {
	DB        *gorm.DB
	Codes     recurring.CodeTable
	Primary   string
	BatchSize int
	Progress  Progress
}

// New returns a generator using the default code table.
func New(db *gorm.DB) *Generator {
	return &Generator{
		DB:    db,
		Codes: recurring.DefaultCodes(),
	}
}

// Generate replaces all unposted transactions from opts.AsOf on with a
// freshly computed plan.
//
// Deleting the old and inserting the new transactions happens in one
// database transaction. On any error, including cancellation of ctx,
// the database is left unchanged. Running Generate twice with the same
// state produces the same transactions.
func (g *Generator) Generate(ctx context.Context, opts Options) (Result, error) {
	start, end := opts.Window()
	logger := log.With().Str("from", start.Format("2006-01-02")).Str("until", end.Format("2006-01-02")).Logger()

	in, err := Load(g.DB.WithContext(ctx), g.Primary)
	if err != nil {
		return Result{}, fmt.Errorf("could not load generation input: %w", err)
	}

	codes := g.Codes
	if codes == nil {
		codes = recurring.DefaultCodes()
	}

	plan := NewPlan(in, codes, opts)
	for _, w := range plan.Warnings {
		logger.Warn().Err(w).Msg("skipping record")
	}

	batchSize := g.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	transactions := plan.Transactions()
	total := len(transactions)

	err = g.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("posted = ? AND date >= ?", false, start).Delete(&models.Transaction{}).Error
		if err != nil {
			return fmt.Errorf("could not delete unposted transactions: %w", err)
		}

		for i := 0; i < total; i += batchSize {
			if err := ctx.Err(); err != nil {
				return err
			}

			j := min(i+batchSize, total)
			batch := transactions[i:j]
			err := tx.CreateInBatches(&batch, batchSize).Error
			if err != nil {
				return fmt.Errorf("could not insert transactions: %w", err)
			}

			if g.Progress != nil {
				g.Progress(j, total)
			}
		}

		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("generation rolled back")
		return Result{}, err
	}

	generatedCount.Add(float64(total))
	skippedCount.Add(float64(plan.Skipped))
	warningCount.Add(float64(len(plan.Warnings)))

	logger.Info().Int("created", total).Int("skipped", plan.Skipped).Int("warnings", len(plan.Warnings)).Msg("generated transactions")

	return Result{
		Created:  total,
		Skipped:  plan.Skipped,
		Warnings: plan.Warnings,
	}, nil
}
