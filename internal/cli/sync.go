package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"WooFeedSync/internal/database"
	"WooFeedSync/internal/database/model/syncrun"
	"WooFeedSync/internal/feed"
	"WooFeedSync/internal/sync"
)

var (
	syncFrom int
	syncTo   int
	runsN    int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync feed rows to the catalog",
	Long: `Sync walks the feed sheet row by row. --from and --to are sheet line
numbers (the header is line 1) and bound the rows processed.`,
	Example: `  woofeedsync sync
  woofeedsync sync --from 2 --to 50`,
	RunE: runSync,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Ask a running sync to stop after its current row",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.NewStopFlag(db).Set(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "stop requested")
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count feed rows by sync status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		wb, err := feed.Open(cfg.FEED.Path)
		if err != nil {
			return err
		}
		defer wb.Close()
		sheet, err := wb.Sheet(cfg.FEED.Sheet)
		if err != nil {
			return err
		}
		st := sync.SheetStats(sheet.Table)
		fmt.Fprintf(cmd.OutOrStdout(), "total: %d\nsynced: %d\nerrors: %d\npending: %d\n",
			st.Total, st.Synced, st.Errors, st.Pending)
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show the latest sync runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		runs, err := syncrun.SelectLast(db, runsN)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %-9s rows:%d created:%d updated:%d skipped:%d errors:%d\n",
				r.Started, r.ID, r.State, r.Processed, r.Created, r.Updated, r.Skipped, r.Errors)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().IntVar(&syncFrom, "from", 0, "first sheet line")
	syncCmd.Flags().IntVar(&syncTo, "to", 0, "last sheet line")
	runsCmd.Flags().IntVarP(&runsN, "last", "n", 10, "number of runs")
	rootCmd.AddCommand(syncCmd, stopCmd, statsCmd, runsCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()

	sheet, err := s.wb.Sheet(cfg.FEED.Sheet)
	if err != nil {
		return err
	}
	report, err := s.service.Run(cmd.Context(), sheet, sync.Selection{From: syncFrom, To: syncTo})
	if report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.String())
	}
	return err
}
