package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/timexceed/testa-go/internal/reportio"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAppend_HistoryLaw(t *testing.T) {
	db := openTestDB(t)
	records := []reportio.ReportRecord{
		{Name: "exe/a", Result: "PASS", Duration: (1500 * time.Millisecond).String()},
		{Name: "exe/b", Result: "FAILED", Duration: (2 * time.Second).String()},
	}
	now := time.Unix(1000, 0)
	if err := Append(db, "run-1", records, now); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := db.Recent("exe/a", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1 (history law: one row per dispatched case)", len(rows))
	}
}

func TestRecent_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	older := []reportio.ReportRecord{{Name: "exe/a", Result: "PASS", Duration: "1s"}}
	newer := []reportio.ReportRecord{{Name: "exe/a", Result: "PASS", Duration: "2s"}}

	if err := Append(db, "run-1", older, time.Unix(1000, 0)); err != nil {
		t.Fatal(err)
	}
	if err := Append(db, "run-2", newer, time.Unix(2000, 0)); err != nil {
		t.Fatal(err)
	}

	rows, err := db.Recent("exe/a", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].RunID != "run-2" {
		t.Errorf("rows[0].RunID = %q, want run-2 (newest first)", rows[0].RunID)
	}
}

func TestRunsSince_FiltersOlderRows(t *testing.T) {
	db := openTestDB(t)
	records := []reportio.ReportRecord{{Name: "exe/a", Result: "PASS", Duration: "1s"}}

	if err := Append(db, "run-1", records, time.Unix(100, 0)); err != nil {
		t.Fatal(err)
	}
	if err := Append(db, "run-2", records, time.Unix(5000, 0)); err != nil {
		t.Fatal(err)
	}

	summaries, err := db.RunsSince(time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("RunsSince: %v", err)
	}
	if len(summaries) != 1 || summaries[0].RunID != "run-2" {
		t.Fatalf("RunsSince(1000) = %v, want only run-2", summaries)
	}
}

func TestRunsSince_AggregatesPassFailPerRun(t *testing.T) {
	db := openTestDB(t)
	records := []reportio.ReportRecord{
		{Name: "exe/a", Result: "PASS", Duration: "1s"},
		{Name: "exe/b", Result: "SKIP", Duration: "0s"},
		{Name: "exe/c", Result: "FAILED", Duration: "1s"},
		{Name: "exe/d", Result: "TIMEOUT", Duration: "5s"},
	}
	if err := Append(db, "run-1", records, time.Unix(1000, 0)); err != nil {
		t.Fatal(err)
	}

	summaries, err := db.RunsSince(time.Unix(0, 0))
	if err != nil {
		t.Fatalf("RunsSince: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("len(summaries) = %d, want 1 run", len(summaries))
	}
	s := summaries[0]
	if s.Passed != 2 {
		t.Errorf("Passed = %d, want 2 (PASS + SKIP)", s.Passed)
	}
	if s.Failed != 2 {
		t.Errorf("Failed = %d, want 2 (FAILED + TIMEOUT)", s.Failed)
	}
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
}

func TestAppend_MalformedDurationDefaultsToZero(t *testing.T) {
	db := openTestDB(t)
	records := []reportio.ReportRecord{{Name: "exe/a", Result: "SKIP", Duration: "not-a-duration"}}
	if err := Append(db, "run-1", records, time.Unix(1, 0)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	rows, err := db.Recent("exe/a", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].DurationS != 0 {
		t.Fatalf("rows = %v, want a single row with duration 0", rows)
	}
}
