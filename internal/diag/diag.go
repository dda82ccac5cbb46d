// Package diag provides the runner's "[component] message" stderr
// diagnostic convention.
package diag

import (
	"fmt"
	"io"
)

// Logger writes "[testa] "-prefixed diagnostics to an underlying
// writer, normally os.Stderr.
type Logger struct {
	out io.Writer
}

// New returns a Logger writing to out.
func New(out io.Writer) *Logger {
	return &Logger{out: out}
}

// Printf writes a single prefixed diagnostic line.
func (l *Logger) Printf(format string, a ...interface{}) {
	fmt.Fprintf(l.out, "[testa] "+format+"\n", a...)
}

// Warn writes a single prefixed warning line.
func (l *Logger) Warn(format string, a ...interface{}) {
	fmt.Fprintf(l.out, "[testa] warning: "+format+"\n", a...)
}
