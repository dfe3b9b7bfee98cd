// Package cmd provides the commands of the forecast CLI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/envelope-zero/forecast/internal/config"
	v1 "github.com/envelope-zero/forecast/internal/controllers/v1"
	"github.com/envelope-zero/forecast/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options are the settings shared by all commands.
type options struct {
	envFile string
	cfg     config.Config
}

// New returns the root command with all subcommands attached.
func New() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast account balances from recurring charges",
		Long: `forecast projects the balances of bank accounts, credit cards and loans
from recurring charges, paychecks and shared expenses.

Example:
  forecast generate --horizon 12
  forecast minimum --account C --days 90
  forecast payoff --budget 500 --compare
  forecast serve`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
	}

	root.PersistentFlags().StringVar(&o.envFile, "env", "", "environment file to load (default is .env)")

	root.AddCommand(
		newServeCommand(o),
		newGenerateCommand(o),
		newMinimumCommand(o),
		newRecalculateCommand(o),
		newPayoffCommand(o),
	)

	return root
}

// Execute runs the root command.
func Execute() error {
	return New().Execute()
}

// setup loads the configuration, configures logging and connects to the database.
func (o *options) setup() error {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return err
	}
	o.cfg = cfg

	config.SetupLogging(os.Stderr)

	if cfg.Postgres != "" {
		log.Debug().Msg("connecting to postgres")
		return models.ConnectPostgres(cfg.Postgres)
	}

	err = os.MkdirAll(filepath.Dir(cfg.Database), os.ModePerm)
	if err != nil {
		return fmt.Errorf("could not create data directory: %w", err)
	}

	log.Debug().Str("path", cfg.Database).Msg("connecting to sqlite")
	return models.Connect(cfg.Database)
}

// controller returns the API controller for the configuration.
func (o *options) controller() v1.Controller {
	return v1.Controller{
		Codes:   o.cfg.Codes,
		Primary: o.cfg.Primary,
		Horizon: o.cfg.HorizonMonths,
		Window:  o.cfg.MinimumWindow,
		Money:   o.cfg.Money,
	}
}
