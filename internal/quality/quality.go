// Package quality validates and repairs OHLCV series before storage
// and indicator computation.
package quality

import (
	"math"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

// Gate rejects series that would poison downstream artifacts.
// Validation never mutates its input and never panics.
type Gate struct {
	log *logger.Logger
}

// NewGate creates a quality gate
func NewGate(log *logger.Logger) *Gate {
	return &Gate{log: log}
}

// Validate reports whether a series is fit for storage:
// non-empty, at least minRows rows, finite values only, non-negative
// prices and volume, high >= low, and no duplicate dates.
func (g *Gate) Validate(series contracts.BarSeries, minRows int) bool {
	if series.IsEmpty() {
		g.log.Warn("Validation failed: empty series")
		return false
	}

	if series.Len() < minRows {
		g.log.WithFields(map[string]interface{}{
			"rows":     series.Len(),
			"min_rows": minRows,
		}).Warn("Validation failed: too few rows")
		return false
	}

	seen := make(map[int64]bool, series.Len())
	for i, b := range series {
		if !b.IsFinite() {
			g.log.WithField("row", i).Warn("Validation failed: non-finite value")
			return false
		}
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 {
			g.log.WithField("row", i).Warn("Validation failed: negative value")
			return false
		}
		if b.High < b.Low {
			g.log.WithField("row", i).Warn("Validation failed: high below low")
			return false
		}

		key := b.Date.Unix()
		if seen[key] {
			g.log.WithField("row", i).Warn("Validation failed: duplicate date")
			return false
		}
		seen[key] = true
	}

	return true
}

// Clean returns a repaired copy of the series: sorted, duplicate dates
// collapsed (last wins), negative values flipped to their magnitude,
// inverted high/low swapped, rows with non-finite values dropped.
// The input series is never modified.
func Clean(series contracts.BarSeries) contracts.BarSeries {
	cleaned := series.Clone()
	cleaned.Sort()
	cleaned = cleaned.DedupeDates()

	out := make(contracts.BarSeries, 0, cleaned.Len())
	for _, b := range cleaned {
		if !b.IsFinite() {
			continue
		}

		b.Open = math.Abs(b.Open)
		b.High = math.Abs(b.High)
		b.Low = math.Abs(b.Low)
		b.Close = math.Abs(b.Close)
		b.Volume = math.Abs(b.Volume)

		if b.High < b.Low {
			b.High, b.Low = b.Low, b.High
		}

		out = append(out, b)
	}

	return out
}

// RepairCloseBounds returns a copy where each bar's high/low range is
// widened to contain the close. Some provider rows carry an adjusted
// close outside the raw range, which breaks stochastic and Ichimoku
// math.
func RepairCloseBounds(series contracts.BarSeries) contracts.BarSeries {
	out := series.Clone()
	for i, b := range out {
		if b.Close > b.High {
			out[i].High = b.Close
		}
		if b.Close < b.Low {
			out[i].Low = b.Close
		}
	}
	return out
}
