package main

import (
	"fmt"

	"github.com/entrhq/vanish/pkg/config"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/server"
	"github.com/spf13/cobra"
)

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.MustLogger("serve")
	defer logger.Close()

	reg, err := loadRegistry(logger)
	if err != nil {
		return err
	}

	addr, readLimit, writeTimeout, origins := config.GetServer().Snapshot()
	if flagAddr, _ := cmd.Flags().GetString("addr"); flagAddr != "" {
		addr = flagAddr
	}
	pick, _ := cmd.Flags().GetBool("pick")
	_, _, seed, _ := config.GetExperiment().Snapshot()
	def := defaultVariant("")
	if _, err := reg.Get(def); err != nil {
		return err
	}

	srv := server.New(server.Config{
		Addr:           addr,
		ReadLimit:      readLimit,
		WriteTimeout:   writeTimeout,
		AllowedOrigins: origins,
		DefaultVariant: def,
		Seed:           seed,
		Pick:           pick,
	}, reg, logger.With("http"))

	fmt.Fprintf(cmd.OutOrStdout(), "vanish serving %d variant(s) on %s (log %s)\n", len(reg.Names()), addr, logger.LogPath())
	return srv.Run(cmd.Context())
}
