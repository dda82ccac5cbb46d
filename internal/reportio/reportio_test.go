package reportio

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/timexceed/testa-go/internal/catalogue"
	"github.com/timexceed/testa-go/internal/statstore"
)

func TestBuildRecords_SortedByName(t *testing.T) {
	cases := []*catalogue.Case{
		{Name: "z/case", Result: catalogue.Pass, Duration: time.Second},
		{Name: "a/case", Result: catalogue.Failed, Duration: 2 * time.Second},
	}
	records := BuildRecords(cases)
	if records[0].Name != "a/case" || records[1].Name != "z/case" {
		t.Fatalf("records not sorted by name: %v", records)
	}
	if records[0].Result != "FAILED" {
		t.Errorf("Result = %q, want FAILED", records[0].Result)
	}
}

func TestWriteReport_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")
	cases := []*catalogue.Case{
		{Name: "exe/ok", Result: catalogue.Pass, Duration: 1500 * time.Millisecond, Stdout: "/tmp/ok.out", Stderr: "/tmp/ok.err", Cwd: "/tmp"},
	}
	records := BuildRecords(cases)
	if err := WriteReport(path, records); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	var got []ReportRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("parsing report: %v", err)
	}
	if len(got) != 1 || got[0].Name != "exe/ok" {
		t.Fatalf("report round-trip = %v, want one exe/ok record", got)
	}
}

func TestWriteReport_EmptyPathIsNoop(t *testing.T) {
	if err := WriteReport("", []ReportRecord{{Name: "x"}}); err != nil {
		t.Fatalf("WriteReport with empty path: %v", err)
	}
}

func TestUpdateStats_OnlyPassDurationsRecorded(t *testing.T) {
	dir := t.TempDir()
	stats, err := statstore.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	cases := []*catalogue.Case{
		{Name: "exe/ok", Result: catalogue.Pass, Duration: 2 * time.Second},
		{Name: "exe/bad", Result: catalogue.Failed, Duration: 3 * time.Second},
	}
	if err := UpdateStats(dir, stats, cases); err != nil {
		t.Fatalf("UpdateStats: %v", err)
	}

	reloaded, err := statstore.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Expected("exe/ok"); got != 2 {
		t.Errorf("Expected(exe/ok) = %v, want 2", got)
	}
	if got := reloaded.Expected("exe/bad"); got != 0 {
		t.Errorf("Expected(exe/bad) = %v, want 0 (failed cases are not recorded)", got)
	}
}

func TestUpdateStats_CapsAtWindow(t *testing.T) {
	dir := t.TempDir()
	stats, _ := statstore.Load(dir)
	for i := 0; i < statstore.Window; i++ {
		stats.RecordPass("exe/ok", 1)
	}
	cases := []*catalogue.Case{{Name: "exe/ok", Result: catalogue.Pass, Duration: 5 * time.Second}}
	if err := UpdateStats(dir, stats, cases); err != nil {
		t.Fatal(err)
	}

	reloaded, _ := statstore.Load(dir)
	band, ok := reloaded.Band("exe/ok")
	if !ok {
		t.Fatal("expected a band after recording 11 durations capped to window")
	}
	// The oldest 1s entry is dropped: nine 1s plus the new 5s, mean 14/10.
	if band.Mean != 1.4 {
		t.Errorf("Mean = %v, want 1.4 (window capped at %d)", band.Mean, statstore.Window)
	}
}
