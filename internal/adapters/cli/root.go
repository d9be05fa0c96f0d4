package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "supplyload",
		Short: "Supply loading controller - load vehicles from settlement stock",
		Long: `supplyload drives vehicle loading sessions: a parked vehicle is filled from
settlement stock according to a manifest of mandatory and optional resources
and equipment, with workers converting their time into loadable mass.

Examples:
  supplyload simulate --scenario scenarios/crater-resupply.yaml
  supplyload simulate --scenario scenarios/crater-resupply.yaml --ticks 50 --tick-rate 2 --db loading.db
  supplyload events load-rover-1-1a2b3c4d --db loading.db
  supplyload sessions --vehicle Rover-1 --db loading.db
  supplyload config show`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: config.yaml in ., ./configs or /etc/supplyload)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output (debug log level)")

	// Add command groups
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewSessionsCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
