package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/entrhq/vanish/pkg/executor/headless"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/spf13/cobra"
)

func runScenario(cmd *cobra.Command, args []string) error {
	logger := logging.MustLogger("run")
	defer logger.Close()

	scenario, err := headless.LoadScenario(args[0])
	if err != nil {
		return err
	}
	var opts []headless.ExecutorOption
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		scenario.Artifacts.Enabled = true
		scenario.Artifacts.OutputDir = output
		// An explicit --output may point anywhere.
		opts = append(opts, headless.WithAllowedDir(output))
	}
	if verbosity, _ := cmd.Flags().GetString("verbosity"); verbosity != "" {
		scenario.Logging.Verbosity = verbosity
	}

	reg, err := loadRegistry(logger)
	if err != nil {
		return err
	}

	workspace, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}
	executor, err := headless.NewExecutor(scenario, reg, workspace, opts...)
	if err != nil {
		return err
	}
	executor.SetLogger(logger)

	_, err = executor.Run(cmd.Context())
	if errors.Is(err, headless.ErrExpectationsFailed) {
		// The summary already lists every failed check.
		cmd.SilenceErrors = true
	}
	return err
}
