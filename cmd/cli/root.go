package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yourorg/imnotdurnk/internal/config"
	appdb "github.com/yourorg/imnotdurnk/internal/db"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "imnotdurnk-cli",
	Short: "Operator tools for the imnotdurnk backend",
	Long: `Operator tools for the imnotdurnk backend.

Settings come from .env, the YAML file named by CONFIG_FILE and the
environment, the same way the server reads them.

EXAMPLES:

  imnotdurnk-cli health                  # Ask a running server for /health
  imnotdurnk-cli migrate                 # Create missing tables
  imnotdurnk-cli seed                    # Create the verified demo user
  imnotdurnk-cli gtfs sync               # Replace transit data from GTFS_FEED_URL
  imnotdurnk-cli gtfs sync --file a.zip  # Import a feed already on disk`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		return err
	},
}

func init() {
	rootCmd.AddCommand(healthCmd, migrateCmd, seedCmd, gtfsCmd)
}

// openDB connects and makes sure the schema exists.
func openDB() (*sql.DB, error) {
	db, err := appdb.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := appdb.EnsureSchema(db, cfg.DB.SkipSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}
