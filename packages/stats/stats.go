// Package stats aggregates test durations for the run epilogue.
package stats

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Durations are recorded in microseconds; longer values are clamped.
const maxDuration = time.Hour

// Summary holds duration percentiles for a run
type Summary struct {
	Count int64
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// Durations is a histogram of test durations
type Durations struct {
	histogram *hdrhistogram.Histogram
}

func NewDurations() *Durations {
	return &Durations{
		// 1us to 1h, 3 significant digits
		histogram: hdrhistogram.New(1, maxDuration.Microseconds(), 3),
	}
}

// Record adds d. Negative durations count as zero.
func (d *Durations) Record(v time.Duration) {
	if v < 0 {
		v = 0
	}
	if v > maxDuration {
		v = maxDuration
	}
	_ = d.histogram.RecordValue(v.Microseconds())
}

func (d *Durations) Summary() Summary {
	return Summary{
		Count: d.histogram.TotalCount(),
		P50:   time.Duration(d.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(d.histogram.ValueAtQuantile(95)) * time.Microsecond,
		Max:   time.Duration(d.histogram.Max()) * time.Microsecond,
	}
}
