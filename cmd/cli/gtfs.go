package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yourorg/imnotdurnk/internal/gtfs"
)

var (
	gtfsFile    string
	gtfsTimeout time.Duration
)

var gtfsCmd = &cobra.Command{
	Use:   "gtfs",
	Short: "Manage the static transit feed",
}

var gtfsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace stop, route and stop_time with a GTFS feed",
	Long: `Download GTFS_FEED_URL (falling back to GTFS_FALLBACK_URL) or read
--file, then replace the transit tables in one transaction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), gtfsTimeout)
		defer cancel()

		var summary *gtfs.Summary
		if gtfsFile != "" {
			data, err := os.ReadFile(gtfsFile)
			if err != nil {
				return err
			}
			summary, err = gtfs.Import(ctx, db, data)
			if err != nil {
				return err
			}
			summary.SourceURL = gtfsFile
		} else {
			loader := gtfs.NewLoader(cfg.GTFSFeedURL, cfg.GTFSFallbackURL, nil)
			summary, err = loader.Sync(ctx, db)
			if err != nil {
				return err
			}
		}

		success("GTFS imported from %s", summary.SourceURL)
		faint := color.New(color.Faint)
		fmt.Printf("  version     %s\n", faint.Sprint(orDash(summary.FeedVersion)))
		fmt.Printf("  stops       %d\n", summary.StopsImported)
		fmt.Printf("  routes      %d\n", summary.RoutesImported)
		fmt.Printf("  stop times  %d\n", summary.StopTimesImported)
		if summary.Skipped > 0 {
			warn("%d malformed rows skipped", summary.Skipped)
		}
		return nil
	},
}

func init() {
	gtfsSyncCmd.Flags().StringVar(&gtfsFile, "file", "", "import a local GTFS zip instead of downloading")
	gtfsSyncCmd.Flags().DurationVar(&gtfsTimeout, "timeout", 30*time.Minute, "overall sync timeout")
	gtfsCmd.AddCommand(gtfsSyncCmd)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
