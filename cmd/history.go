package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/timexceed/testa-go/internal/history"
)

var (
	historyDBPath string
	historyLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the optional run-history database",
}

var historyRecentCmd = &cobra.Command{
	Use:   "recent <case-name>",
	Short: "Show the most recent recorded runs for a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := history.Open(historyDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := db.Recent(args[0], historyLimit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no history recorded for %q\n", args[0])
			return nil
		}
		for _, r := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-8s %6.3fs  run=%s  %s\n",
				humanize.Time(r.RecordedAt), r.Result, r.DurationS, r.RunID, r.CaseName)
		}
		return nil
	},
}

var historyTrendCmd = &cobra.Command{
	Use:   "trend <since>",
	Short: "Show per-run pass/fail counts recorded since a duration ago",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		since, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("parsing duration %q: %w", args[0], err)
		}

		db, err := history.Open(historyDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		summaries, err := db.RunsSince(time.Now().Add(-since))
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no runs recorded in the last %s\n", args[0])
			return nil
		}
		for _, s := range summaries {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s  run=%s  %d passed, %d failed (of %d)\n",
				humanize.Time(s.RecordedAt), s.RunID, s.Passed, s.Failed, s.Total)
		}
		return nil
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyDBPath, "history", "history.db", "sqlite history database path")
	historyRecentCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum rows to show")
	historyCmd.AddCommand(historyRecentCmd)
	historyCmd.AddCommand(historyTrendCmd)
	rootCmd.AddCommand(historyCmd)
}
