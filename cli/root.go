// ABOUTME: Root cobra command and shared runtime wiring for the CLI
// ABOUTME: Loads configuration, opens stores lazily, and closes them after each run
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/dismissals"
	"github.com/harperreed/dealdesk/handlers"
	"github.com/harperreed/dealdesk/supabase"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the configuration and the stores opened for a single invocation.
type app struct {
	v       *viper.Viper
	version string
	cfg     *config.Config

	database   *sql.DB
	store      handlers.DealStore
	dismissals *dismissals.Store
}

func newApp(version string) *app {
	return &app{v: config.NewViper(), version: version}
}

// Execute runs the CLI and exits non-zero on failure.
func Execute(version string) {
	config.LoadEnv()

	a := newApp(version)
	root := newRootCmd(a)
	err := root.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dealdesk",
		Short:        "Next best action and suggestions for real estate deals",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Config file path (optional)")
	flags.String("db-path", "", "SQLite database path (default: ~/.local/share/dealdesk/dealdesk.db)")
	flags.String("dismissals-path", "", "Dismissal store directory")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("source", "", "Deal source (sqlite, supabase)")
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("db_path", flags.Lookup("db-path"))
	_ = a.v.BindPFlag("dismissals_path", flags.Lookup("dismissals-path"))
	_ = a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("source", flags.Lookup("source"))

	cmd.AddCommand(newLeadCmd(a))
	cmd.AddCommand(newPropertyCmd(a))
	cmd.AddCommand(newDealCmd(a))
	cmd.AddCommand(newOfferCmd(a))
	cmd.AddCommand(newPhotoCmd(a))
	cmd.AddCommand(newReportCmd(a))
	cmd.AddCommand(newConversationCmd(a))
	cmd.AddCommand(newSuggestionCmd(a))
	cmd.AddCommand(newMCPCmd(a))
	cmd.AddCommand(newVersionCmd(a))

	return cmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "dealdesk version %s\n", a.version)
			return err
		},
	}
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if err := config.InitLogger(cfg.LogLevel); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// sqlDB opens the local database. Record-entry commands only work against it.
func (a *app) sqlDB() (*sql.DB, error) {
	if a.database != nil {
		return a.database, nil
	}
	if a.cfg.Source != config.SourceSQLite {
		return nil, fmt.Errorf("this command requires the %s source (configured: %s)", config.SourceSQLite, a.cfg.Source)
	}

	database, err := db.OpenDatabase(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	config.Logger.WithField("path", a.cfg.DBPath).Debug("Opened database")
	a.database = database
	return database, nil
}

// dealStore returns the store for the configured source.
func (a *app) dealStore() (handlers.DealStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.cfg.Source {
	case config.SourceSupabase:
		store, err := supabase.NewStore(a.cfg.SupabaseURL, a.cfg.SupabaseKey, config.Logger)
		if err != nil {
			return nil, err
		}
		store.ConversationLimit = a.cfg.ConversationLimit
		a.store = store
	default:
		database, err := a.sqlDB()
		if err != nil {
			return nil, err
		}
		store := db.NewStore(database)
		store.ConversationLimit = a.cfg.ConversationLimit
		a.store = store
	}
	return a.store, nil
}

func (a *app) dismissalStore() (*dismissals.Store, error) {
	if a.dismissals != nil {
		return a.dismissals, nil
	}
	store, err := dismissals.Open(a.cfg.DismissalsPath, config.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open dismissals: %w", err)
	}
	a.dismissals = store
	return store, nil
}

func (a *app) close() {
	if a.dismissals != nil {
		if err := a.dismissals.Close(); err != nil {
			config.Logger.WithError(err).Warn("Failed to close dismissals")
		}
		a.dismissals = nil
	}
	if a.database != nil {
		if err := a.database.Close(); err != nil {
			config.Logger.WithError(err).Warn("Failed to close database")
		}
		a.database = nil
	}
	a.store = nil
}

func parseID(kind, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--%s is required", kind)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", kind, err)
	}
	return id, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
