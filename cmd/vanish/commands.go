package main

import (
	"fmt"

	"github.com/entrhq/vanish/pkg/config"
	"github.com/entrhq/vanish/pkg/logging"
	"github.com/entrhq/vanish/pkg/variant"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath  string
	logLevel    string
	variantsDir string

	rootCmd = &cobra.Command{
		Use:   "vanish",
		Short: "Run AR transparency experiments",
		Long: `vanish drives the invisibility experiment: objects are anchored in the
participant's space, a probe object fades through a scripted sequence and
every tap is counted against the object it registered on.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	// --- Hosts ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve experiment sessions over WebSocket",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}
	simCmd = &cobra.Command{
		Use:   "sim",
		Short: "Simulate a session in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runSim, // Defined in cmd_sim.go
	}
	pipeCmd = &cobra.Command{
		Use:   "pipe",
		Short: "Run a session over stdin/stdout, one JSON command per line",
		Args:  cobra.NoArgs,
		RunE:  runPipe, // Defined in cmd_sim.go
	}
	runCmd = &cobra.Command{
		Use:   "run [scenario.yaml]",
		Short: "Replay a scripted scenario without a display",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario, // Defined in cmd_run.go
	}

	// --- Variants ---
	variantsCmd = &cobra.Command{
		Use:   "variants",
		Short: "Inspect experiment variants",
	}
	variantsListCmd = &cobra.Command{
		Use:   "list [pattern]",
		Short: "List registered variants, optionally filtered by a glob",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runVariantsList, // Defined in cmd_variants.go
	}
	variantsShowCmd = &cobra.Command{
		Use:   "show [name]",
		Short: "Print a variant as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runVariantsShow, // Defined in cmd_variants.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the vanish version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vanish v%s\n", version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.vanish/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&variantsDir, "variants-dir", "", "directory of extra variant YAML files")

	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().Bool("pick", false, "resolve tap rays on the server instead of trusting client hit lists")
	simCmd.Flags().String("variant", "", "variant to simulate (default from config)")
	pipeCmd.Flags().String("variant", "", "variant to run (default from config)")
	pipeCmd.Flags().Bool("simulate-anchors", false, "complete placements without an anchor reply")
	runCmd.Flags().String("output", "", "artifact directory, overriding the scenario")
	runCmd.Flags().String("verbosity", "", "console verbosity: quiet, normal, verbose, debug")
	variantsShowCmd.Flags().Bool("no-color", false, "disable syntax highlighting")

	variantsCmd.AddCommand(variantsListCmd, variantsShowCmd)
	rootCmd.AddCommand(serveCmd, simCmd, pipeCmd, runCmd, variantsCmd, versionCmd)
}

// setup loads configuration and applies flag overrides. Precedence is flags,
// then environment, then the config file, then defaults.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(configPath); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	_, dir, _, level := config.GetExperiment().Snapshot()
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	logging.SetLevel(parsed)

	if variantsDir == "" {
		variantsDir = dir
	}
	return nil
}

// loadRegistry returns the built-in variants plus any from --variants-dir.
func loadRegistry(logger *logging.Logger) (*variant.Registry, error) {
	reg, err := variant.Builtin(logger)
	if err != nil {
		return nil, err
	}
	if variantsDir != "" {
		if _, err := reg.LoadDir(variantsDir); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// defaultVariant resolves the --variant flag against config.
func defaultVariant(flag string) string {
	if flag != "" {
		return flag
	}
	name, _, _, _ := config.GetExperiment().Snapshot()
	if name == "" {
		return variant.DefaultVariant
	}
	return name
}
