package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/andrescamacho/supplyload-go/internal/adapters/persistence"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/config"
	"github.com/andrescamacho/supplyload-go/internal/infrastructure/database"
)

// NewEventsCommand creates the events command
func NewEventsCommand() *cobra.Command {
	var (
		limit  int
		level  string
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "events <session-id>",
		Short: "Get the persisted events of a loading session",
		Long: `Retrieve events for a specific loading session from the database.

Examples:
  supplyload events load-rover-1-1a2b3c4d --db loading.db
  supplyload events load-rover-1-1a2b3c4d --db loading.db --limit 50
  supplyload events load-rover-1-1a2b3c4d --db loading.db --level WARN`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]
			out := cmd.OutOrStdout()

			db, err := openDatabase(dbPath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			eventRepo := persistence.NewGormLoadingEventRepository(db, nil)

			var levelPtr *string
			if level != "" {
				upper := strings.ToUpper(level)
				levelPtr = &upper
			}

			events, err := eventRepo.GetEvents(context.Background(), sessionID, limit, levelPtr, nil)
			if err != nil {
				return fmt.Errorf("failed to get events: %w", err)
			}

			if len(events) == 0 {
				fmt.Fprintln(out, "No events found for session:", sessionID)
				return nil
			}

			// Display events in reverse order (oldest first)
			for i := len(events) - 1; i >= 0; i-- {
				event := events[i]
				fmt.Fprintf(out, "[%s] [%s] %s%s\n",
					event.Timestamp.Format("2006-01-02 15:04:05"),
					event.Level,
					event.Message,
					formatMetadata(event.Metadata),
				)
			}

			fmt.Fprintf(out, "\nTotal: %d events\n", len(events))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of events")
	cmd.Flags().StringVar(&level, "level", "", "Filter by level (DEBUG, INFO, WARN, ERROR)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file written by simulate (default from config)")

	return cmd
}

// NewSessionsCommand creates the sessions command
func NewSessionsCommand() *cobra.Command {
	var (
		vehicle string
		dbPath  string
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List the recorded outcomes of a vehicle's loading sessions",
		Long: `List ended loading sessions of a vehicle, oldest first.

Example:
  supplyload sessions --vehicle Rover-1 --db loading.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if vehicle == "" {
				return fmt.Errorf("--vehicle flag is required")
			}
			out := cmd.OutOrStdout()

			db, err := openDatabase(dbPath)
			if err != nil {
				return err
			}
			defer database.Close(db)

			records, err := persistence.NewGormSessionRepository(db).FindByVehicle(context.Background(), vehicle)
			if err != nil {
				return err
			}

			if len(records) == 0 {
				fmt.Fprintln(out, "No sessions found for vehicle:", vehicle)
				return nil
			}

			for _, r := range records {
				fmt.Fprintf(out, "%s  %-9s  ticks=%-4d loaded=%.3f kg  retries=%d  hold_full=%t  ended=%s\n",
					r.ID, r.Outcome, r.Ticks, r.LoadedKg, r.RetryAttempts, r.HoldFull,
					r.EndedAt.Format("2006-01-02 15:04:05"),
				)
			}

			fmt.Fprintf(out, "\nTotal: %d sessions\n", len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&vehicle, "vehicle", "", "Vehicle name (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file written by simulate (default from config)")

	return cmd
}

// openDatabase connects to the --db sqlite file, or the configured database
func openDatabase(dbPath string) (*gorm.DB, error) {
	dbConfig := config.SQLite(dbPath)
	if dbPath == "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		dbConfig = cfg.Database
	}

	return database.Open(&dbConfig)
}

func formatMetadata(metadata map[string]interface{}) string {
	if len(metadata) == 0 {
		return ""
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, metadata[k]))
	}
	return " {" + strings.Join(parts, " ") + "}"
}
