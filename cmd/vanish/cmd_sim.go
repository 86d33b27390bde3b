package main

import (
	"math/rand/v2"

	"github.com/entrhq/vanish/pkg/config"
	"github.com/entrhq/vanish/pkg/executor/cli"
	"github.com/entrhq/vanish/pkg/executor/tui"
	"github.com/entrhq/vanish/pkg/experiment"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/spf13/cobra"
)

// resolveVariant loads the registry and picks the --variant flag or the
// configured default.
func resolveVariant(cmd *cobra.Command, logger *logging.Logger) (*experiment.Variant, error) {
	reg, err := loadRegistry(logger)
	if err != nil {
		return nil, err
	}
	name, _ := cmd.Flags().GetString("variant")
	return reg.Get(defaultVariant(name))
}

// seededRand returns a session option fixing the recolor sequence when a seed
// is configured.
func seededRand() []experiment.Option {
	_, _, seed, _ := config.GetExperiment().Snapshot()
	if seed == 0 {
		return nil
	}
	s := uint64(seed)
	return []experiment.Option{experiment.WithRand(rand.New(rand.NewPCG(s, s)))}
}

func runSim(cmd *cobra.Command, args []string) error {
	logger := logging.MustLogger("sim")
	defer logger.Close()

	v, err := resolveVariant(cmd, logger)
	if err != nil {
		return err
	}
	return tui.NewExecutor(v,
		tui.WithLogger(logger),
		tui.WithSessionOptions(seededRand()...),
	).Run(cmd.Context())
}

func runPipe(cmd *cobra.Command, args []string) error {
	logger := logging.MustLogger("pipe")
	defer logger.Close()

	v, err := resolveVariant(cmd, logger)
	if err != nil {
		return err
	}
	simulate, _ := cmd.Flags().GetBool("simulate-anchors")
	return cli.NewExecutor(v,
		cli.WithReader(cmd.InOrStdin()),
		cli.WithWriter(cmd.OutOrStdout()),
		cli.WithLogger(logger),
		cli.WithSimulatedAnchors(simulate),
		cli.WithSessionOptions(seededRand()...),
	).Run(cmd.Context())
}
