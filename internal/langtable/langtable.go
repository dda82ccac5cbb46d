// Package langtable loads the language table that maps a trial
// executable's filename to the command line used to invoke it.
package langtable

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// DiscoveryArg is the fixed argument used to invoke a trial's discovery
// mode.
const DiscoveryArg = "--show-cases"

// defaultExecute is applied when no rule in the table matches an
// executable's filename.
const defaultExecute = "{prog} {arg}"

// Rule is one entry of the language table.
type Rule struct {
	Language string `json:"language"`
	Pattern  string `json:"pattern"`
	Execute  string `json:"execute"`

	compiled *regexp.Regexp
}

// Table is an ordered list of language rules. Resolution picks the
// first rule whose Pattern matches the executable's filename.
type Table struct {
	rules []Rule
}

// Load reads and validates a language table from a JSON file.
//
// The file must parse to a JSON array of objects, each carrying
// "language", "pattern", and "execute"; "execute" must contain the
// literal substring "{arg}". Any violation is a fatal configuration
// error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading language config %q: %w", path, err)
	}

	var raw []Rule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("language config %q must be a JSON array: %w", path, err)
	}

	for i := range raw {
		if err := validateRule(&raw[i]); err != nil {
			return nil, fmt.Errorf("language config %q: %w", path, err)
		}
	}

	return &Table{rules: raw}, nil
}

func validateRule(r *Rule) error {
	if r.Language == "" {
		return fmt.Errorf(`need "language" item for name of language`)
	}
	if r.Pattern == "" {
		return fmt.Errorf(`"pattern" is necessary for %q, which must be a regular expression to match filenames`, r.Language)
	}
	if r.Execute == "" {
		return fmt.Errorf(`"execute" is necessary for %q, which must contain {prog} and {arg}`, r.Language)
	}
	if !strings.Contains(r.Execute, "{arg}") {
		return fmt.Errorf(`"{arg}" is necessary for "execute" in %q, which stands for the arg of the trial protocol`, r.Language)
	}
	compiled, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("%q has an invalid pattern %q: %w", r.Language, r.Pattern, err)
	}
	r.compiled = compiled
	return nil
}

// Resolve selects the first rule whose pattern matches exe's filename,
// or the default direct-invocation rule if none match.
func (t *Table) Resolve(exe string) Rule {
	name := filepath.Base(exe)
	for _, r := range t.rules {
		if r.compiled.MatchString(name) {
			return r
		}
	}
	return Rule{Language: "", Execute: defaultExecute}
}

// Render substitutes {prog} and {arg} in the resolved rule's execute
// template, producing a shell-splittable command line. prog is
// resolved to an absolute path.
func (r Rule) Render(prog, arg string) (string, error) {
	abs, err := filepath.Abs(prog)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path for %q: %w", prog, err)
	}
	out := strings.ReplaceAll(r.Execute, "{prog}", abs)
	out = strings.ReplaceAll(out, "{arg}", arg)
	return out, nil
}
