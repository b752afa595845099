package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tholdem/holdem-staff/cmd/cli/commands"
	"github.com/tholdem/holdem-staff/internal/config"
	"github.com/tholdem/holdem-staff/pkg/clients/redisclient"
	"github.com/tholdem/holdem-staff/pkg/core/attendance"
	"github.com/tholdem/holdem-staff/pkg/core/dates"
	"github.com/tholdem/holdem-staff/pkg/core/grouping"
	"github.com/tholdem/holdem-staff/pkg/core/history"
	"github.com/tholdem/holdem-staff/pkg/core/selection"
	"github.com/tholdem/holdem-staff/pkg/db"
	"github.com/tholdem/holdem-staff/pkg/mongodb"
	"github.com/tholdem/holdem-staff/pkg/postgres"
	"github.com/tholdem/holdem-staff/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
	closers []func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "holdem-staff",
		Short: "T-HOLDEM staffing CLI - Review and confirm tournament staff applications",
		Long:  `A CLI tool for reviewing applicant selections, confirming staff, publishing rosters and tracking attendance.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
		SilenceUsage: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(commands.ViewSelectionsCmd(app))
	rootCmd.AddCommand(commands.ListApplicantsCmd(app))
	rootCmd.AddCommand(commands.ConfirmCmd(app))
	rootCmd.AddCommand(commands.CancelConfirmationCmd(app))
	rootCmd.AddCommand(commands.CancelApplicationCmd(app))
	rootCmd.AddCommand(commands.StaffCountsCmd(app))
	rootCmd.AddCommand(commands.DefinePostingCmd(app))
	rootCmd.AddCommand(commands.PublishRosterCmd(app))
	rootCmd.AddCommand(commands.AttendanceCmd(app))
	rootCmd.AddCommand(commands.ImportDocumentsCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		// PersistentPostRun is skipped when a command fails
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, database and the selection pipeline
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()

	// Initialize logger
	app.Logger, err = logging.InitLogger(logging.Options{Env: env, Dir: "logs", Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Connect to database
	app.Database, err = openDatabase(app.Ctx, app.Cfg, app.Logger)
	if err != nil {
		return err
	}
	closers = append(closers, func() { app.Database.Close(context.Background()) })
	app.Logger.Info("Database initialized successfully", zap.String("backend", app.Cfg.DatabaseBackend))

	// Selection pipeline shares one display cache
	formatter := dates.NewFormatter(app.Cfg.DisplayCacheSize)
	app.Normalizer = selection.NewNormalizer(app.Logger, history.NewService(), formatter)
	app.Grouper = grouping.New(app.Logger, formatter)

	// Attendance overlay is shared through Redis when configured
	if app.Cfg.RedisAddr != "" {
		app.Logger.Info("Connecting to redis", zap.String("addr", app.Cfg.RedisAddr))
		client, err := redisclient.Connect(app.Ctx, app.Cfg.RedisAddr, app.Cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		app.Overlay = redisclient.NewOverlay(client, app.Cfg.RevertWindow())
	} else {
		overlay := attendance.NewMemoryOverlay(app.Cfg.RevertWindow())
		closers = append(closers, overlay.Close)
		app.Overlay = overlay
	}

	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (db.Database, error) {
	switch cfg.DatabaseBackend {
	case config.BackendMongo:
		logger.Info("Connecting to mongo", zap.String("database", cfg.MongoDatabase))
		mdb, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return mdb, nil
	default:
		logger.Info("Connecting to postgres")
		pdb, err := postgres.NewDB(ctx, cfg.PostgresURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pdb.RunMigrations(ctx); err != nil {
			pdb.Close(ctx)
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return pdb, nil
	}
}

func shutdown() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
	if app.Logger != nil {
		app.Logger.Sync()
	}
}
