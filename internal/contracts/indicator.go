package contracts

import (
	"math"
	"time"
)

// IndicatorColumns is the fixed indicator battery, in CSV column order
// ⭐ SSOT: 지표 컬럼 이름/순서는 여기서만 정의
var IndicatorColumns = []string{
	"Close",
	"Change_Percent",
	"EMA5",
	"EMA20",
	"EMA40",
	"MACD",
	"MACD_Signal",
	"MACD_Histogram",
	"RSI",
	"Stoch_K",
	"Stoch_D",
	"BB_Upper",
	"BB_Lower",
	"BB_Middle",
	"Ichimoku_Tenkan",
	"Ichimoku_Kijun",
	"Ichimoku_Senkou_A",
	"Ichimoku_Senkou_B",
	"Volume_MA5",
	"Volume_MA20",
	"Volume_MA40",
	"Volume_Ratio_5d",
	"Volume_Ratio_20d",
	"Volume_Ratio_40d",
}

// IndicatorSeries holds computed indicator columns aligned to Dates.
// NaN marks a value whose lookback window is not yet filled; it is
// written as an empty CSV cell, never zero-filled.
type IndicatorSeries struct {
	Dates  []time.Time
	Values map[string][]float64
}

// NewIndicatorSeries allocates a series with every column NaN-filled
func NewIndicatorSeries(dates []time.Time) *IndicatorSeries {
	values := make(map[string][]float64, len(IndicatorColumns))
	for _, col := range IndicatorColumns {
		vals := make([]float64, len(dates))
		for i := range vals {
			vals[i] = math.NaN()
		}
		values[col] = vals
	}

	ds := make([]time.Time, len(dates))
	copy(ds, dates)

	return &IndicatorSeries{Dates: ds, Values: values}
}

// Len returns the number of rows
func (s *IndicatorSeries) Len() int {
	return len(s.Dates)
}

// Column returns the values for a column name. ok is false for unknown columns.
func (s *IndicatorSeries) Column(name string) (vals []float64, ok bool) {
	vals, ok = s.Values[name]
	return vals, ok
}

// Set replaces a column's values. Length must match Dates.
func (s *IndicatorSeries) Set(name string, vals []float64) {
	if len(vals) != len(s.Dates) {
		return
	}
	s.Values[name] = vals
}
