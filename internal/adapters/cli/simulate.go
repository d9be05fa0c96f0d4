package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/andrescamacho/supplyload-go/internal/adapters/metrics"
	"github.com/andrescamacho/supplyload-go/internal/adapters/persistence"
	"github.com/andrescamacho/supplyload-go/internal/application/common"
	"github.com/andrescamacho/supplyload-go/internal/application/loading"
	"github.com/andrescamacho/supplyload-go/internal/application/logging"
	loadingDomain "github.com/andrescamacho/supplyload-go/internal/domain/loading"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/config"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/database"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/scenario"
)

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var (
		scenarioPath string
		ticks        int
		tickRate     float64
		dbPath       string
		withMetrics  bool
		tree         bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a loading session from a scenario file",
		Long: `Build a settlement, a parked vehicle and a manifest from a YAML scenario,
then run one LoadTick per worker per tick until the session completes, fails
or runs out of ticks. The outstanding manifest is printed after every tick.

Examples:
  supplyload simulate --scenario scenarios/crater-resupply.yaml
  supplyload simulate --scenario scenarios/crater-resupply.yaml --ticks 20 --tick-rate 1
  supplyload simulate --scenario scenarios/crater-resupply.yaml --db loading.db --metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if scenarioPath == "" {
				return fmt.Errorf("--scenario flag is required")
			}

			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cmd.Flags().Changed("ticks") {
				cfg.Simulation.MaxTicks = ticks
			}
			if cmd.Flags().Changed("tick-rate") {
				cfg.Simulation.TickRate = tickRate
			}
			if dbPath != "" {
				cfg.Database = config.SQLite(dbPath)
			}
			if withMetrics {
				cfg.Metrics.Enabled = true
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}

			doc, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}

			w, closeLog, err := cfg.Logging.OpenOutput()
			if err != nil {
				return err
			}
			defer closeLog()

			console, err := logging.NewConsoleLogger(w, cfg.Logging.Format, cfg.Logging.Level)
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cfg.Simulation.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Simulation.Timeout)
				defer cancel()
			}
			ctx = logging.WithLogger(ctx, console)

			var commandMetrics *metrics.CommandMetricsCollector
			if cfg.Metrics.Enabled {
				server, collector, err := startMetrics(cfg.Metrics)
				if err != nil {
					return err
				}
				commandMetrics = collector
				fmt.Fprintf(cmd.OutOrStdout(), "Metrics: http://%s%s\n", server.Addr(), cfg.Metrics.Path)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Shutdown(shutdownCtx)
					metrics.Reset()
				}()
			}

			result, err := runSimulation(ctx, cfg, doc, simulationOutput{
				out:     cmd.OutOrStdout(),
				tree:    tree,
				metrics: commandMetrics,
			})
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to scenario YAML file (required)")
	cmd.Flags().IntVar(&ticks, "ticks", 0, "Maximum number of ticks (default from config)")
	cmd.Flags().Float64Var(&tickRate, "tick-rate", 0, "Ticks per second, 0 runs unpaced (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file for the event log and session outcomes")
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "Expose Prometheus metrics while simulating")
	cmd.Flags().BoolVar(&tree, "tree", false, "Print the outstanding manifest as a tree instead of the raw dump")

	return cmd
}

// simulationOutput controls what a run prints
type simulationOutput struct {
	out     io.Writer
	tree    bool
	metrics *metrics.CommandMetricsCollector
}

// simulationResult summarizes a finished run
type simulationResult struct {
	Scenario  string
	SessionID string
	Outcome   loading.Outcome
	Ticks     int
	Record    *loading.SessionRecord
	Vehicle   string
}

// runSimulation drives one loading session of the scenario to its end
func runSimulation(ctx context.Context, cfg *config.Config, doc *scenario.Document, output simulationOutput) (*simulationResult, error) {
	world, err := scenario.Build(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario: %w", err)
	}

	opts, err := cfg.Loading.Options(world.Catalog)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		return nil, err
	}
	defer database.Close(db)

	eventRepo := persistence.NewGormLoadingEventRepository(db, nil)
	sessionRepo := persistence.NewGormSessionRepository(db)

	m := common.NewMediator()
	if output.metrics != nil {
		m.Use(metrics.PrometheusMiddleware(output.metrics))
	}
	err = loading.RegisterHandlers(m, loading.Dependencies{
		Registry: loading.NewRegistry(),
		Sessions: sessionRepo,
		Options:  opts,
		LoggerFactory: func(sessionID, vehicle string) logging.EventLogger {
			return persistence.NewEventLogger(eventRepo, sessionID, vehicle)
		},
	})
	if err != nil {
		return nil, err
	}

	resp, err := m.Send(ctx, &loading.SetLoadingCommand{
		Manifest: world.Manifest,
		Source:   world.Settlement,
		Hold:     world.Vehicle,
	})
	if err != nil {
		return nil, err
	}
	started := resp.(*loading.SetLoadingResponse)

	result := &simulationResult{
		Scenario:  world.Name,
		SessionID: started.SessionID,
		Vehicle:   world.Vehicle.Name(),
	}
	fmt.Fprintf(output.out, "Scenario %s: session %s started for %s\n", world.Name, started.SessionID, world.Vehicle.Name())

	var limiter *rate.Limiter
	if cfg.Simulation.TickRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Simulation.TickRate), 1)
	}
	formatter := NewProgressFormatter(false, false, world.Catalog)

	for tick := 1; tick <= cfg.Simulation.MaxTicks && result.Outcome == ""; tick++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		} else if ctx.Err() != nil {
			break
		}
		result.Ticks = tick

		for _, restock := range world.RestocksFor(tick) {
			if err := world.ApplyRestock(restock); err != nil {
				return nil, err
			}
			fmt.Fprintf(output.out, "Tick %d: settlement restocked\n", tick)
		}

		outcome, err := runTick(ctx, m, world, cfg.Simulation.TickDuration)
		if err != nil {
			return nil, fmt.Errorf("tick %d: %w", tick, err)
		}
		result.Outcome = outcome

		fmt.Fprintf(output.out, "--- tick %d ---\n", tick)
		if outcome != "" {
			fmt.Fprintf(output.out, "Session ended: %s\n", outcome)
			break
		}
		if err := printProgress(ctx, m, world.Vehicle.Name(), formatter, output); err != nil {
			return nil, err
		}
	}

	// Out of ticks or interrupted
	if result.Outcome == "" {
		if _, err := m.Send(context.WithoutCancel(ctx), &loading.SetLoadingCommand{Vehicle: world.Vehicle.Name()}); err != nil {
			return nil, err
		}
		result.Outcome = loading.OutcomeCancelled
	}

	record, err := sessionRepo.FindByID(context.WithoutCancel(ctx), started.SessionID)
	if err != nil {
		return nil, err
	}
	result.Record = record
	return result, nil
}

// runTick lets every worker load, then applies background loading.
// A non-empty outcome means the session ended during the tick.
func runTick(ctx context.Context, m common.Mediator, world *scenario.World, duration float64) (loading.Outcome, error) {
	vehicle := world.Vehicle.Name()

	for _, worker := range world.Workers {
		resp, err := m.Send(ctx, &loading.LoadTickCommand{
			Vehicle: vehicle,
			Worker:  worker,
			Time:    duration,
		})
		if err != nil {
			return "", err
		}
		if tick := resp.(*loading.LoadTickResponse); tick.Outcome != "" {
			return tick.Outcome, nil
		}
	}

	if world.BackgroundTime > 0 {
		resp, err := m.Send(ctx, &loading.BackgroundLoadCommand{Vehicle: vehicle, Time: world.BackgroundTime})
		if err != nil {
			return "", err
		}
		return resp.(*loading.BackgroundLoadResponse).Outcome, nil
	}
	return "", nil
}

func printProgress(ctx context.Context, m common.Mediator, vehicle string, formatter *ProgressFormatter, output simulationOutput) error {
	resp, err := m.Send(ctx, &loading.GetLoadingQuery{Vehicle: vehicle})
	if errors.Is(err, loadingDomain.ErrNoActiveSession) {
		return nil
	}
	if err != nil {
		return err
	}

	snapshot := resp.(*loading.LoadingSnapshot)
	if output.tree {
		fmt.Fprint(output.out, formatter.FormatTree(snapshot))
	} else {
		fmt.Fprint(output.out, snapshot.Dump)
	}
	fmt.Fprintln(output.out, formatter.FormatSummary(snapshot))
	return nil
}

func printResult(out io.Writer, result *simulationResult) {
	fmt.Fprintln(out, "\nResult")
	fmt.Fprintln(out, "======")
	fmt.Fprintf(out, "  Scenario:         %s\n", result.Scenario)
	fmt.Fprintf(out, "  Session:          %s\n", result.SessionID)
	fmt.Fprintf(out, "  Vehicle:          %s\n", result.Vehicle)
	fmt.Fprintf(out, "  Outcome:          %s\n", result.Outcome)
	fmt.Fprintf(out, "  Ticks:            %d\n", result.Ticks)
	if result.Record != nil {
		fmt.Fprintf(out, "  Loaded:           %.3f kg\n", result.Record.LoadedKg)
		fmt.Fprintf(out, "  Retries Left:     %d\n", result.Record.RetryAttempts)
		fmt.Fprintf(out, "  Hold Full:        %t\n", result.Record.HoldFull)
	}
}

// startMetrics initializes the registry, registers the collectors and serves them
func startMetrics(cfg config.MetricsConfig) (*metrics.Server, *metrics.CommandMetricsCollector, error) {
	metrics.InitRegistry()

	loadingCollector := metrics.NewLoadingMetricsCollector()
	if err := loadingCollector.Register(); err != nil {
		return nil, nil, fmt.Errorf("failed to register loading metrics: %w", err)
	}
	metrics.SetGlobalLoadingCollector(loadingCollector)

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return nil, nil, fmt.Errorf("failed to register command metrics: %w", err)
	}

	server, err := metrics.NewServer(cfg.Address(), cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	server.Start()
	return server, commandCollector, nil
}
