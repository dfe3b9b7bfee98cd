package cmd

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/payoff"
	"github.com/envelope-zero/forecast/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newPayoffCommand(o *options) *cobra.Command {
	var (
		strategy string
		budget   string
		compare  bool
	)

	cmd := &cobra.Command{
		Use:   "payoff",
		Short: "Simulate paying off all credit cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(budget)
			if err != nil || !amount.IsPositive() {
				return errors.New("--budget must be set to a positive amount")
			}

			cards, err := payoff.Load(models.DB)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

			if compare {
				fmt.Fprintln(w, "STRATEGY\tMONTHS\tINTEREST\tPAID\tAVERAGE\tPAID OFF")
				for _, s := range payoff.Compare(cards, amount, time.Now()) {
					writeSummary(w, o.cfg.Money, s)
				}
				return w.Flush()
			}

			st, err := payoff.ParseStrategy(strategy)
			if err != nil {
				return err
			}

			s, err := payoff.Plan(cards, st, amount, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintln(w, "STRATEGY\tMONTHS\tINTEREST\tPAID\tAVERAGE\tPAID OFF")
			writeSummary(w, o.cfg.Money, s)
			fmt.Fprintln(w)

			fmt.Fprintln(w, "MONTH\tCARD\tPAYMENT\tINTEREST\tREMAINING")
			for _, p := range s.Payments {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", types.MonthOf(p.Month), p.Card, o.cfg.Money.Format(p.Amount), o.cfg.Money.Format(p.Interest), o.cfg.Money.Format(p.Remaining))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(payoff.Avalanche), "one of AVALANCHE, SNOWBALL, HYBRID, HIGH_UTILIZATION, CASH_ON_HAND")
	cmd.Flags().StringVar(&budget, "budget", "", "total monthly budget for all cards")
	cmd.Flags().BoolVar(&compare, "compare", false, "compare all strategies")
	return cmd
}

func writeSummary(w io.Writer, money types.Money, s payoff.Schedule) {
	paidOff := types.MonthOf(s.PayoffMonth).String()
	if !s.Converged {
		paidOff = "never"
	}

	fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", s.Strategy, s.Months, money.Format(s.TotalInterest), money.Format(s.TotalPaid), money.Format(s.AveragePayment()), paidOff)
}
