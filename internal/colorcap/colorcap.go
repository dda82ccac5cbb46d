// Package colorcap injects terminal colour capability into the
// collector as a Painter, rather than letting the collector query the
// terminal itself.
package colorcap

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Painter renders collector output in a named colour, or plainly when
// colour is unavailable or suppressed.
type Painter interface {
	Green(format string, a ...interface{}) string
	Red(format string, a ...interface{}) string
	Blue(format string, a ...interface{}) string
}

// plain is the Painter used when colour is suppressed: stdout is not
// a terminal, --no-color was passed, or the colour library itself
// failed to initialize.
type plain struct{}

func (plain) Green(format string, a ...interface{}) string { return fmt.Sprintf(format, a...) }
func (plain) Red(format string, a ...interface{}) string   { return fmt.Sprintf(format, a...) }
func (plain) Blue(format string, a ...interface{}) string  { return fmt.Sprintf(format, a...) }

// ansi wraps fatih/color's colour functions.
type ansi struct {
	green *color.Color
	red   *color.Color
	blue  *color.Color
}

func (p *ansi) Green(format string, a ...interface{}) string { return p.green.Sprintf(format, a...) }
func (p *ansi) Red(format string, a ...interface{}) string   { return p.red.Sprintf(format, a...) }
func (p *ansi) Blue(format string, a ...interface{}) string  { return p.blue.Sprintf(format, a...) }

var warnOnce sync.Once

// New detects whether out is a terminal and the colour library is
// usable, and returns the matching Painter. forceDisable corresponds
// to an explicit --no-color flag, which always wins. On any failure
// initializing the colour library, a one-shot warning is printed to
// stderr and New falls back to plain.
func New(out io.Writer, forceDisable bool) Painter {
	if forceDisable {
		return plain{}
	}

	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return plain{}
	}

	p, err := newAnsi()
	if err != nil {
		warnOnce.Do(func() {
			fmt.Fprintf(os.Stderr, "[testa] colour output unavailable, falling back to plain: %v\n", err)
		})
		return plain{}
	}
	return p
}

func newAnsi() (Painter, error) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	blue := color.New(color.FgBlue)
	if green == nil || red == nil || blue == nil {
		return nil, fmt.Errorf("color: failed to allocate colour attributes")
	}
	return &ansi{green: green, red: red, blue: blue}, nil
}
