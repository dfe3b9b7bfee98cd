package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/projection"
	"github.com/spf13/cobra"
)

func newMinimumCommand(o *options) *cobra.Command {
	var (
		account string
		days    int
		from    string
	)

	cmd := &cobra.Command{
		Use:   "minimum",
		Short: "Show the lowest projected balance of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = o.cfg.MinimumWindow
			}
			if days <= 0 {
				days = projection.DefaultWindow
			}

			day, err := parseDay("from", from)
			if err != nil {
				return err
			}

			if account == "" {
				primary, err := models.PrimaryAccount(models.DB, o.cfg.Primary)
				if errors.Is(err, models.ErrResourceNotFound) {
					return errors.New("no primary account found, set --account")
				} else if err != nil {
					return err
				}
				account = primary.PayTypeCode
			}

			forecast, err := projection.Load(models.DB, day)
			if err != nil {
				return err
			}

			minimum, err := forecast.MinimumInWindow(account, day, days)
			if err != nil {
				return fmt.Errorf("%w '%s'", err, account)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Minimum balance of %s in the %d days from %s: %s on %s\n",
				account, days, day.Format(time.DateOnly), o.cfg.Money.Format(minimum.Value), minimum.Date.Format(time.DateOnly))

			if negative, ok := forecast.FirstNegative(account, day); ok {
				fmt.Fprintf(out, "The balance is negative first on %s\n", negative.Format(time.DateOnly))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "pay type code of the account (default is the primary account)")
	cmd.Flags().IntVar(&days, "days", projection.DefaultWindow, "number of days in the window")
	cmd.Flags().StringVar(&from, "from", "", "first day of the window in YYYY-MM-DD format (default today)")
	return cmd
}
