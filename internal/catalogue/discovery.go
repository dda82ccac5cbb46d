package catalogue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/timexceed/testa-go/internal/langtable"
)

// DiscoveryJob builds the Case descriptor that invokes exe in
// discovery mode. The output directory for exe's cases.out/cases.err
// and per-case files is created here, idempotently.
func DiscoveryJob(exe string, table *langtable.Table, outputDir string) (*Case, error) {
	rule := table.Resolve(exe)
	execute, err := rule.Render(exe, langtable.DiscoveryArg)
	if err != nil {
		return nil, fmt.Errorf("rendering discovery command for %q: %w", exe, err)
	}

	progDir, err := filepath.Abs(filepath.Dir(exe))
	if err != nil {
		return nil, fmt.Errorf("resolving directory of %q: %w", exe, err)
	}

	testDir, err := filepath.Abs(filepath.Join(outputDir, exe))
	if err != nil {
		return nil, fmt.Errorf("resolving output directory for %q: %w", exe, err)
	}
	if err := os.MkdirAll(testDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %q: %w", testDir, err)
	}

	return &Case{
		Name:            exe,
		Execute:         execute,
		Cwd:             progDir,
		Stdout:          filepath.Join(testDir, "cases.out"),
		Stderr:          filepath.Join(testDir, "cases.err"),
		SuppressTimeout: true,
	}, nil
}

// ParseEntries parses the JSON array a trial's discovery invocation
// wrote to its stdout file.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing discovery output: %w", err)
	}
	return entries, nil
}

// BuildCases materializes one Case per discovery Entry for exe.
func BuildCases(exe string, rule langtable.Rule, entries []Entry, outputDir string) ([]*Case, error) {
	progDir, err := filepath.Abs(filepath.Dir(exe))
	if err != nil {
		return nil, fmt.Errorf("resolving directory of %q: %w", exe, err)
	}

	testDir, err := filepath.Abs(filepath.Join(outputDir, exe))
	if err != nil {
		return nil, fmt.Errorf("resolving output directory for %q: %w", exe, err)
	}

	cases := make([]*Case, 0, len(entries))
	for _, e := range entries {
		execute, err := rule.Render(exe, e.Name)
		if err != nil {
			return nil, fmt.Errorf("rendering command for %q/%q: %w", exe, e.Name, err)
		}

		cases = append(cases, &Case{
			Name:         fmt.Sprintf("%s/%s", exe, e.Name),
			Execute:      execute,
			Cwd:          progDir,
			Stdout:       filepath.Join(testDir, e.Name+".out"),
			Stderr:       filepath.Join(testDir, e.Name+".err"),
			Broken:       e.Broken,
			BrokenReason: e.BrokenReason,
		})
	}
	return cases, nil
}
