package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/supplyload-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect supplyload configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (SL_* prefix, e.g. SL_LOADING_LOAD_RATE)
2. Config file (config.yaml)
3. Default values

Examples:
  supplyload config show
  supplyload config show --config ./configs/config.yaml`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long: `Display the current configuration settings.

Example:
  supplyload config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Fprintf(out, "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(out, "Using default configuration.")
				cfg = config.LoadConfigOrDefault(configPath)
			}

			printConfig(out, cfg)
			return nil
		},
	}

	return cmd
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Supply Loading Configuration")
	fmt.Fprintln(out, "============================")

	fmt.Fprintln(out, "Loading:")
	fmt.Fprintf(out, "  Load Rate:        %g kg per 12 time units\n", cfg.Loading.LoadRate)
	fmt.Fprintf(out, "  Max Retries:      %d\n", cfg.Loading.MaxRetryAttempts)
	fmt.Fprintf(out, "  Hold Full Margin: %g kg\n", cfg.Loading.HoldFullMarginKg)
	fmt.Fprintf(out, "  Smallest Load:    %g kg\n", cfg.Loading.SmallestLoadKg)
	fmt.Fprintf(out, "  Background Mod:   %g\n", cfg.Loading.BackgroundStrengthModifier)
	fmt.Fprintf(out, "  Life Support:     %s\n", strings.Join(cfg.Loading.LifeSupport, ", "))

	fmt.Fprintln(out, "\nSimulation:")
	fmt.Fprintf(out, "  Tick Rate:        %g/s\n", cfg.Simulation.TickRate)
	fmt.Fprintf(out, "  Max Ticks:        %d\n", cfg.Simulation.MaxTicks)
	fmt.Fprintf(out, "  Tick Duration:    %g\n", cfg.Simulation.TickDuration)
	if cfg.Simulation.Timeout > 0 {
		fmt.Fprintf(out, "  Timeout:          %s\n", cfg.Simulation.Timeout)
	}

	fmt.Fprintln(out, "\nDatabase:")
	fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.URL != "":
		fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
	case cfg.Database.Type == "sqlite":
		fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.DSN())
	default:
		fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
		fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
		fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
		fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
		fmt.Fprintf(out, "  Max Connections:  %d\n", cfg.Database.Pool.MaxOpen)
	}

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)

	fmt.Fprintln(out, "\nMetrics:")
	fmt.Fprintf(out, "  Enabled:          %t\n", cfg.Metrics.Enabled)
	fmt.Fprintf(out, "  Endpoint:         http://%s%s\n", cfg.Metrics.Address(), cfg.Metrics.Path)
}

// maskPassword masks passwords in connection strings for display
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
