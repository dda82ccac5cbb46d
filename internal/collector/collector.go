// Package collector consumes worker pool outcomes, classifies each
// into a catalogue.Result, prints progress lines, and accumulates the
// passed/failed partitions.
package collector

import (
	"fmt"
	"io"
	"time"

	"github.com/timexceed/testa-go/internal/catalogue"
	"github.com/timexceed/testa-go/internal/colorcap"
	"github.com/timexceed/testa-go/internal/statstore"
	"github.com/timexceed/testa-go/internal/workerpool"
)

// Cancelled is returned by Collect when a CANCEL outcome was observed;
// the run must abort with exit code 1.
type Cancelled struct {
	Case *catalogue.Case
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("run cancelled while executing %q", e.Case.Name)
}

// Partitions holds the terminal classification of every case the
// collector has consumed.
type Partitions struct {
	Passed []*catalogue.Case
	Failed []*catalogue.Case
}

// Collect reads exactly total outcomes from pool's response channel,
// prints one progress line per outcome to out, and returns the
// resulting partitions. It returns a *Cancelled error the first time a
// CANCEL outcome is observed, without waiting for the remaining
// outcomes.
func Collect(pool *workerpool.Pool, total int, stats *statstore.Store, paint colorcap.Painter, out io.Writer) (Partitions, error) {
	var parts Partitions
	for completed := 1; completed <= total; completed++ {
		res := <-pool.Responses()
		c := res.Case

		if res.Outcome == workerpool.OutcomeCancel {
			fmt.Fprintf(out, "[testa] cancelled: %s\n", c.Name)
			return parts, &Cancelled{Case: c}
		}

		duration := c.Stop.Sub(c.Start)
		c.Duration = duration

		label, hint, result := classify(res.Outcome, c, duration, stats, paint)
		c.Result = result
		switch result {
		case catalogue.Pass, catalogue.Skip:
			parts.Passed = append(parts.Passed, c)
		case catalogue.Failed, catalogue.Timeout:
			parts.Failed = append(parts.Failed, c)
		}

		fmt.Fprintf(out, "%d/%d %s costs %s%s\n", completed, total, label, formatDuration(duration), hint)
	}
	return parts, nil
}

func classify(outcome workerpool.Outcome, c *catalogue.Case, duration time.Duration, stats *statstore.Store, paint colorcap.Painter) (label, hint string, result catalogue.Result) {
	name := truncateMiddle(c.Name, maxProgressNameLen)
	switch outcome {
	case workerpool.OutcomeSkip:
		return fmt.Sprintf("%s: %s", paint.Blue("skip"), name), "", catalogue.Skip
	case workerpool.OutcomeOK:
		label = fmt.Sprintf("%s: %s", paint.Green("pass"), name)
		return label, annotation(c.Name, duration, stats, paint), catalogue.Pass
	case workerpool.OutcomeError:
		return fmt.Sprintf("%s: %s", paint.Red("fail"), name), "", catalogue.Failed
	case workerpool.OutcomeTimeout:
		return fmt.Sprintf("%s: %s", paint.Red("kill"), name), "", catalogue.Timeout
	default:
		return fmt.Sprintf("%s: %s", name, outcome), "", catalogue.Failed
	}
}

// maxProgressNameLen bounds how much of a fully-qualified case name
// is shown on a progress line before the middle is elided.
const maxProgressNameLen = 80

// annotation computes the bias annotation and anomaly hint for a
// passing case against its recorded duration band. It returns an
// empty string if the case has no recorded band.
func annotation(name string, duration time.Duration, stats *statstore.Store, paint colorcap.Painter) string {
	band, ok := stats.Band(name)
	if !ok {
		return ""
	}

	observed := duration.Seconds()
	bias := statstore.Bias(observed, band)
	sign := "+"
	if bias < 0 {
		sign = "-"
	}
	text := fmt.Sprintf(" (%s%.2f stddev, average: %.2f, stddev: %.2f)", sign, absFloat(bias), band.Mean, band.StdDev)

	tooSlow, tooFast := statstore.IsAnomalous(observed, band)
	switch {
	case tooSlow:
		text += " " + paint.Red("too slow")
	case tooFast:
		text += " " + paint.Red("too fast")
	}
	return text
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f secs", d.Seconds())
}
