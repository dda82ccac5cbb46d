package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/timexceed/testa-go/internal/runner"
)

var (
	runLang     string
	runDir      string
	runJobs     int
	runInclude  string
	runExclude  string
	runTimeout  float64
	runReport   string
	runHistory  string
	runNoColor  bool
	runRunID    string
)

var runCmd = &cobra.Command{
	Use:   "run <executable>...",
	Short: "Discover and run trial executables in parallel",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		include, err := regexp.Compile(runInclude)
		if err != nil {
			return fmt.Errorf("--include: %w", err)
		}
		exclude, err := regexp.Compile(runExclude)
		if err != nil {
			return fmt.Errorf("--exclude: %w", err)
		}

		runID := runRunID
		if runID == "" {
			runID = uuid.NewString()
		}

		cfg := runner.Config{
			Executables: args,
			LangPath:    runLang,
			OutputDir:   runDir,
			Jobs:        runJobs,
			Include:     include,
			Exclude:     exclude,
			Timeout:     time.Duration(runTimeout * float64(time.Second)),
			ReportPath:  runReport,
			HistoryPath: runHistory,
			NoColor:     runNoColor,
			RunID:       runID,
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		go func() {
			<-sigCh
			cancel()
		}()

		code := runner.Run(ctx, cfg, os.Stdout, os.Stderr)
		if code != 0 {
			os.Exit(code)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runLang, "lang", "l", "lang.config", "language configuration file")
	runCmd.Flags().StringVarP(&runDir, "dir", "d", "test_results", "output directory")
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", runner.DefaultJobs(), "worker count")
	runCmd.Flags().StringVarP(&runInclude, "include", "i", ".*", "keep cases whose fully-qualified name matches")
	runCmd.Flags().StringVarP(&runExclude, "exclude", "e", "^$", "drop cases whose fully-qualified name matches")
	runCmd.Flags().Float64Var(&runTimeout, "timeout", 0, "per-case deadline in seconds (0 disables)")
	runCmd.Flags().StringVar(&runReport, "report", "", "write a JSON report to this path")
	runCmd.Flags().StringVar(&runHistory, "history", "", "optional sqlite history database path")
	runCmd.Flags().BoolVar(&runNoColor, "no-color", false, "disable coloured progress output")
	runCmd.Flags().StringVar(&runRunID, "run-id", "", "override the generated run identifier")

	rootCmd.AddCommand(runCmd)
}
