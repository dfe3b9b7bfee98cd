package cmd

import (
	"github.com/envelope-zero/forecast/internal/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCommand(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, teardown, err := router.Config(o.cfg.APIURL)
			if err != nil {
				return err
			}
			defer teardown()

			router.AttachRoutes(r.Group("/"), o.controller())

			log.Info().Str("address", addr).Str("version", router.Version).Msg("starting server")
			return r.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "listen", ":8080", "address to listen on")
	return cmd
}
