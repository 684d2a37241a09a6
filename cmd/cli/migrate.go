package main

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DB.SkipSchema {
			warn("DB_SKIP_SCHEMA is set, nothing to do")
			return nil
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		success("schema is up to date on %s/%s", cfg.DB.Host, cfg.DB.Name)
		return nil
	},
}
