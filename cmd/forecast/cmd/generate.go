package cmd

import (
	"fmt"
	"time"

	"github.com/envelope-zero/forecast/internal/generator"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// parseDay parses a YYYY-MM-DD flag value. An empty value is today.
func parseDay(flag, value string) (time.Time, error) {
	if value == "" {
		return types.Day(time.Now()), nil
	}

	day, err := types.ParseDay(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be a date in YYYY-MM-DD format: %w", flag, err)
	}
	return day, nil
}

func newGenerateCommand(o *options) *cobra.Command {
	var (
		horizon int
		asOf    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Replace all unposted transactions with generated ones",
		Long: `Generate transactions from recurring charges, the paycheck, shared expenses
and credit card interest. All unposted transactions from the first generated
day on are replaced, posted transactions are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("horizon") {
				horizon = o.cfg.HorizonMonths
			}
			if horizon < 1 || horizon > 120 {
				return fmt.Errorf("--horizon must be between 1 and 120 months, got %d", horizon)
			}

			day, err := parseDay("as-of", asOf)
			if err != nil {
				return err
			}

			g := generator.New(models.DB)
			g.Primary = o.cfg.Primary
			if o.cfg.Codes != nil {
				g.Codes = o.cfg.Codes
			}
			g.Progress = func(done, total int) {
				log.Debug().Int("done", done).Int("total", total).Msg("inserted batch")
			}

			opts := generator.Options{HorizonMonths: horizon, AsOf: day}
			result, err := g.Generate(cmd.Context(), opts)
			if err != nil {
				return err
			}

			from, until := opts.Window()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d transactions from %s until %s, %d occurrences are posted already\n",
				result.Created, from.Format(time.DateOnly), until.Format(time.DateOnly), result.Skipped)

			for _, w := range result.Warnings {
				fmt.Fprintf(out, "Skipped: %s\n", w)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&horizon, "horizon", generator.DefaultHorizon, "number of months to generate")
	cmd.Flags().StringVar(&asOf, "as-of", "", "first generated day in YYYY-MM-DD format (default today)")
	return cmd
}
