package reportio

import (
	"fmt"
	"time"
)

// FormatDurationShort renders a run's total elapsed time compactly
// for the end-of-run summary line ("3 failed, ran for 1m12s").
func FormatDurationShort(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case ms < 1000:
		return fmt.Sprintf("0.%ds", ms/100)
	case ms < 60000:
		return fmt.Sprintf("%d.%ds", ms/1000, (ms%1000)/100)
	case ms < 3600000:
		minutes := ms / 60000
		seconds := (ms % 60000) / 1000
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	default:
		hours := ms / 3600000
		minutes := (ms % 3600000) / 60000
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
}
