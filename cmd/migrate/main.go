// Command migrate manages the storyboard database schema
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prperemyshlev/storyboard-api/internal/config"
	"github.com/prperemyshlev/storyboard-api/pkg/database"
	"github.com/prperemyshlev/storyboard-api/pkg/observability"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate <command>",
	Short: "Apply or roll back storyboard schema migrations",
	Long: `Migrate runs the migrations embedded in the binary against the database
configured through the POSTGRES_* environment variables.

Commands:
up           Migrate the DB to the most recent version available
down [N]     Roll back N migrations, or all of them without N
version      Print the current version of the database`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.Load(cmd.Context()); err != nil {
			return err
		}

		logger, err = observability.InitLogger(cfg.Env)
		return err
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = logger.Sync()
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Migrate the DB to the most recent version available",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := database.Migrate(cfg.Postgres.URL()); err != nil {
			return err
		}

		return logVersion()
	},
}

var downCmd = &cobra.Command{
	Use:   "down [N]",
	Short: "Roll back N migrations, or all of them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		steps := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("N must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		if err := database.MigrateDown(cfg.Postgres.URL(), steps); err != nil {
			return err
		}

		return logVersion()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version of the database",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return logVersion()
	},
}

func logVersion() error {
	version, dirty, err := database.MigrationVersion(cfg.Postgres.URL())
	if err != nil {
		return err
	}

	logger.Info("Schema version",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.String("database", cfg.Postgres.DBName),
	)

	return nil
}

func init() {
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
