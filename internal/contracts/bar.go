package contracts

import (
	"math"
	"sort"
	"time"
)

// Timeframe is the bar interval of a series
type Timeframe string

const (
	TimeframeDaily   Timeframe = "d"
	TimeframeWeekly  Timeframe = "w"
	TimeframeMonthly Timeframe = "m"
)

// String returns the single-letter timeframe code used in filenames
func (tf Timeframe) String() string {
	return string(tf)
}

// Label returns the human-readable timeframe name
func (tf Timeframe) Label() string {
	switch tf {
	case TimeframeWeekly:
		return "weekly"
	case TimeframeMonthly:
		return "monthly"
	default:
		return "daily"
	}
}

// AllTimeframes returns the timeframes in derivation order
func AllTimeframes() []Timeframe {
	return []Timeframe{TimeframeDaily, TimeframeWeekly, TimeframeMonthly}
}

// Kind is the artifact content type
type Kind string

const (
	KindOHLCV      Kind = "ohlcv"
	KindIndicators Kind = "indicators"
	KindCrossInfo  Kind = "crossinfo"
)

// String returns the kind name used in filenames
func (k Kind) String() string {
	return string(k)
}

// Bar is a single OHLCV observation. Date carries no wall-clock component;
// it is the bar's calendar date at UTC midnight regardless of market.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// IsFinite reports whether every field of the bar is a finite number
func (b Bar) IsFinite() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BarSeries is an ordered OHLCV series. Most operations assume ascending
// unique dates; Sort and DedupeDates establish that invariant.
type BarSeries []Bar

// Len returns the number of bars
func (s BarSeries) Len() int {
	return len(s)
}

// IsEmpty reports whether the series has no bars
func (s BarSeries) IsEmpty() bool {
	return len(s) == 0
}

// Sort orders bars by date ascending, in place
func (s BarSeries) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// DedupeDates returns a series keeping the last bar for each date.
// Input must already be sorted ascending.
func (s BarSeries) DedupeDates() BarSeries {
	if len(s) < 2 {
		return s.Clone()
	}

	out := make(BarSeries, 0, len(s))
	for i, b := range s {
		if i+1 < len(s) && s[i+1].Date.Equal(b.Date) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Clone returns a copy of the series
func (s BarSeries) Clone() BarSeries {
	out := make(BarSeries, len(s))
	copy(out, s)
	return out
}

// Latest returns the most recent bar. ok is false for an empty series.
func (s BarSeries) Latest() (Bar, bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// Closes returns the close column
func (s BarSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column
func (s BarSeries) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column
func (s BarSeries) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column
func (s BarSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}
