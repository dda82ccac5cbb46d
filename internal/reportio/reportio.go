// Package reportio persists the end-of-run report and the updated
// Stats Store.
package reportio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/timexceed/testa-go/internal/catalogue"
	"github.com/timexceed/testa-go/internal/statstore"
)

// ReportRecord is one element of the JSON report array: name, result,
// a stringified duration, and the case's captured stream/working-
// directory paths.
type ReportRecord struct {
	Name     string `json:"name"`
	Result   string `json:"result"`
	Duration string `json:"duration"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Cwd      string `json:"cwd"`
}

// BuildRecords converts completed cases into ReportRecords sorted by
// name.
func BuildRecords(cases []*catalogue.Case) []ReportRecord {
	records := make([]ReportRecord, len(cases))
	for i, c := range cases {
		records[i] = ReportRecord{
			Name:     c.Name,
			Result:   string(c.Result),
			Duration: c.Duration.String(),
			Stdout:   c.Stdout,
			Stderr:   c.Stderr,
			Cwd:      c.Cwd,
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	return records
}

// WriteReport writes records as a JSON array to path. A no-op if path
// is empty.
func WriteReport(path string, records []ReportRecord) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return writeAtomic(path, data)
}

// UpdateStats merges this run's PASS durations into stats and
// persists the result, capped at statstore.Window entries per case.
func UpdateStats(dir string, stats *statstore.Store, cases []*catalogue.Case) error {
	for _, c := range cases {
		if c.Result != catalogue.Pass {
			continue
		}
		stats.RecordPass(c.Name, c.Duration.Seconds())
	}
	return stats.Write(dir)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp report file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp report file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing report file %q: %w", path, err)
	}
	return nil
}
