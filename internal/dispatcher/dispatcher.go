// Package dispatcher implements the discovery, filter, and ordering
// phases that turn a list of trial executables into a scheduled
// sequence of cases.
package dispatcher

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/timexceed/testa-go/internal/catalogue"
	"github.com/timexceed/testa-go/internal/langtable"
	"github.com/timexceed/testa-go/internal/statstore"
	"github.com/timexceed/testa-go/internal/workerpool"
)

// Discover runs one discovery job per executable through pool,
// parses each trial's catalogue, and returns the combined set of
// cases. A discovery job failing (non-OK outcome, or invalid JSON) is
// fatal to the run: it aborts immediately and the partial catalogue
// is discarded.
func Discover(executables []string, table *langtable.Table, outputDir string, pool *workerpool.Pool, readFile func(string) ([]byte, error)) ([]*catalogue.Case, error) {
	jobs := make([]*catalogue.Case, 0, len(executables))
	for _, exe := range executables {
		job, err := catalogue.DiscoveryJob(exe, table, outputDir)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	// Submit concurrently with draining below: the pool's channels are
	// unbuffered, so a worker finishing a job blocks on sending its
	// response until something reads it. Submitting every job up front
	// before reading any response would deadlock once job count exceeds
	// worker count.
	go func() {
		for _, job := range jobs {
			pool.Submit(job)
		}
	}()

	var all []*catalogue.Case
	for range jobs {
		res := <-pool.Responses()
		if res.Outcome != workerpool.OutcomeOK {
			return nil, fmt.Errorf("discovery failed for %q: outcome %s (see %s)", res.Case.Name, res.Outcome, res.Case.Stderr)
		}

		data, err := readFile(res.Case.Stdout)
		if err != nil {
			return nil, fmt.Errorf("reading discovery output for %q: %w", res.Case.Name, err)
		}
		entries, err := catalogue.ParseEntries(data)
		if err != nil {
			return nil, fmt.Errorf("discovery output for %q: %w", res.Case.Name, err)
		}

		rule := table.Resolve(res.Case.Name)
		cases, err := catalogue.BuildCases(res.Case.Name, rule, entries, outputDir)
		if err != nil {
			return nil, err
		}
		all = append(all, cases...)
	}
	return all, nil
}

// Filter applies the exclude-then-include regular expressions to
// fully-qualified case names. Exclude is applied first, include
// second; both must admit a case for it to run.
func Filter(cases []*catalogue.Case, include, exclude *regexp.Regexp) []*catalogue.Case {
	out := make([]*catalogue.Case, 0, len(cases))
	for _, c := range cases {
		if exclude.MatchString(c.Name) {
			continue
		}
		if !include.MatchString(c.Name) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Order sorts cases by expected duration descending, so that the
// longest-running stragglers start earliest. Cases with no recorded
// history sort to the end, since their expected duration is 0.0.
func Order(cases []*catalogue.Case, stats *statstore.Store) []*catalogue.Case {
	ordered := make([]*catalogue.Case, len(cases))
	copy(ordered, cases)
	sort.SliceStable(ordered, func(i, j int) bool {
		return stats.Expected(ordered[i].Name) > stats.Expected(ordered[j].Name)
	})
	return ordered
}
