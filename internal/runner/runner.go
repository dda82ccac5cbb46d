// Package runner wires together the language table, stats store,
// dispatcher, worker pool, supervisor, collector, and reporters into a
// single invocation, and owns the interrupt/shutdown path.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"
	"time"

	"github.com/timexceed/testa-go/internal/catalogue"
	"github.com/timexceed/testa-go/internal/collector"
	"github.com/timexceed/testa-go/internal/colorcap"
	"github.com/timexceed/testa-go/internal/diag"
	"github.com/timexceed/testa-go/internal/dispatcher"
	"github.com/timexceed/testa-go/internal/history"
	"github.com/timexceed/testa-go/internal/langtable"
	"github.com/timexceed/testa-go/internal/reportio"
	"github.com/timexceed/testa-go/internal/statstore"
	"github.com/timexceed/testa-go/internal/supervisor"
	"github.com/timexceed/testa-go/internal/workerpool"
)

// Config holds every runner CLI flag.
type Config struct {
	Executables []string
	LangPath    string
	OutputDir   string
	Jobs        int
	Include     *regexp.Regexp
	Exclude     *regexp.Regexp
	Timeout     time.Duration
	ReportPath  string
	HistoryPath string
	NoColor     bool
	RunID       string
}

// DefaultJobs returns the default worker count: the online CPU count.
func DefaultJobs() int {
	return runtime.NumCPU()
}

// Run executes one full runner invocation and returns the process
// exit code.
func Run(ctx context.Context, cfg Config, stdout, stderr io.Writer) int {
	log := diag.New(stderr)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Printf("creating output directory %q: %v", cfg.OutputDir, err)
		return 1
	}

	table, err := langtable.Load(cfg.LangPath)
	if err != nil {
		log.Printf("loading language configuration: %v", err)
		return 1
	}

	stats, err := statstore.Load(cfg.OutputDir)
	if err != nil {
		log.Printf("loading stats store: %v", err)
		return 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runStart := time.Now()

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = DefaultJobs()
	}

	run := func(ctx context.Context, c *catalogue.Case) workerpool.Outcome {
		return supervisor.Run(ctx, c, cfg.Timeout)
	}
	pool := workerpool.New(ctx, jobs, run)
	defer pool.Close()

	discovered, err := dispatcher.Discover(cfg.Executables, table, cfg.OutputDir, pool, os.ReadFile)
	if err != nil {
		log.Printf("discovery: %v", err)
		return 1
	}

	include, exclude := cfg.Include, cfg.Exclude
	if include == nil {
		include = regexp.MustCompile(".*")
	}
	if exclude == nil {
		exclude = regexp.MustCompile("^$")
	}
	filtered := dispatcher.Filter(discovered, include, exclude)
	ordered := dispatcher.Order(filtered, stats)

	paint := colorcap.New(stdout, cfg.NoColor)

	// Submitted concurrently with Collect's drain below, for the same
	// reason as dispatcher.Discover: unbuffered channels deadlock if all
	// jobs are enqueued before any response is read.
	go func() {
		for _, c := range ordered {
			pool.Submit(c)
		}
	}()

	parts, err := collector.Collect(pool, len(ordered), stats, paint, stdout)
	if err != nil {
		if cancelled, ok := err.(*collector.Cancelled); ok {
			log.Printf("cancelled: %s", cancelled.Case.Name)
			return 1
		}
		log.Printf("collecting results: %v", err)
		return 1
	}

	all := append(append([]*catalogue.Case{}, parts.Passed...), parts.Failed...)
	records := reportio.BuildRecords(all)

	if err := reportio.WriteReport(cfg.ReportPath, records); err != nil {
		log.Printf("writing report: %v", err)
		return 1
	}
	if err := reportio.UpdateStats(cfg.OutputDir, stats, all); err != nil {
		log.Printf("writing stats store: %v", err)
		return 1
	}

	if cfg.HistoryPath != "" {
		if err := appendHistory(cfg.HistoryPath, cfg.RunID, records); err != nil {
			log.Warn("history append failed (non-fatal): %v", err)
		}
	}

	fmt.Fprintf(stdout, "%d passed, %d failed, ran for %s\n",
		len(parts.Passed), len(parts.Failed), reportio.FormatDurationShort(time.Since(runStart)))
	if len(parts.Failed) > 0 {
		fmt.Fprintln(stdout, "failed cases:")
		for _, c := range parts.Failed {
			fmt.Fprintf(stdout, "  %s (see %s, %s)\n", c.Name, c.Stdout, c.Stderr)
		}
		return 1
	}
	return 0
}

func appendHistory(path, runID string, records []reportio.ReportRecord) error {
	db, err := history.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	if runID == "" {
		runID = "unknown"
	}
	return history.Append(db, runID, records, time.Now())
}
