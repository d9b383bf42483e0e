// Package cli implements the prioq command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prioq/internal/config"
	"prioq/internal/logging"
)

// app is the state shared by every subcommand once the root has
// loaded configuration.
type app struct {
	cfgFile  string
	logLevel string

	cfg config.Config
	log *zap.Logger
}

// NewRootCmd builds the prioq command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "prioq",
		Short: "prioq - priority scheduling simulator",
		Long: `prioq runs task workloads through a single-executor priority scheduler
and reports start, completion and wait times plus deadline statistics.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "prioq.yaml", "config file path")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug | info | warn | error (overrides config)")

	root.AddCommand(
		newRunCmd(a),
		newGenCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
		newInitCmd(a),
		newVersionCmd(version),
	)
	return root
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads config and builds the logger. Flags win over the file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the prioq version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "prioq", version)
		},
	}
}
