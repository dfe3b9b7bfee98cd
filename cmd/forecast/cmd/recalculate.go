package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/envelope-zero/forecast/internal/models"
	"github.com/envelope-zero/forecast/internal/projection"
	"github.com/spf13/cobra"
)

func newRecalculateCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate",
		Short: "Compare stored balances with the balances of all posted transactions",
		Long: `Recalculate all balances from the initial balances and the posted
transactions and list the stored balances that differ. Nothing is corrected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			discrepancies, warnings, err := projection.Audit(models.DB)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, w := range warnings {
				fmt.Fprintf(out, "Ignored: %s\n", w)
			}

			if len(discrepancies) == 0 {
				fmt.Fprintln(out, "All balances are consistent")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tCODE\tNAME\tSTORED\tCOMPUTED")
			for _, d := range discrepancies {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Entity, d.Code, d.Name, o.cfg.Money.Format(d.Stored), o.cfg.Money.Format(d.Computed))
			}
			return w.Flush()
		},
	}
}
