package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chartinsight/internal/contracts"
)

func flatSeries(n int, price, volume float64) contracts.BarSeries {
	s := make(contracts.BarSeries, 0, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s = append(s, contracts.Bar{
			Date: start.AddDate(0, 0, i),
			Open: price, High: price, Low: price, Close: price, Volume: volume,
		})
	}
	return s
}

func risingSeries(n int) contracts.BarSeries {
	s := make(contracts.BarSeries, 0, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		s = append(s, contracts.Bar{
			Date: start.AddDate(0, 0, i),
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		})
	}
	return s
}

func col(t *testing.T, s *contracts.IndicatorSeries, name string) []float64 {
	t.Helper()
	vals, ok := s.Column(name)
	require.True(t, ok, "column %s", name)
	return vals
}

func TestComputeIdenticalBars(t *testing.T) {
	// 40 identical bars: every window fills, nothing divides by zero,
	// nothing panics.
	ind := Compute(flatSeries(40, 100, 1000))
	require.Equal(t, 40, ind.Len())

	last := 39

	assert.Equal(t, 100.0, col(t, ind, "Close")[last])
	assert.Equal(t, 0.0, col(t, ind, "Change_Percent")[0], "first row change is 0")
	assert.Equal(t, 0.0, col(t, ind, "Change_Percent")[last])

	assert.InDelta(t, 100.0, col(t, ind, "EMA5")[last], 1e-9)
	assert.InDelta(t, 100.0, col(t, ind, "EMA40")[last], 1e-9)

	assert.InDelta(t, 0.0, col(t, ind, "MACD")[last], 1e-9)
	assert.InDelta(t, 0.0, col(t, ind, "MACD_Histogram")[last], 1e-9)

	assert.Equal(t, 50.0, col(t, ind, "RSI")[last], "flat series has neutral RSI")

	assert.True(t, math.IsNaN(col(t, ind, "Stoch_K")[last]),
		"zero high-low range leaves the oscillator undefined")

	assert.InDelta(t, 100.0, col(t, ind, "BB_Upper")[last], 1e-9, "zero stddev collapses the bands")
	assert.InDelta(t, 100.0, col(t, ind, "BB_Lower")[last], 1e-9)

	assert.InDelta(t, 100.0, col(t, ind, "Ichimoku_Tenkan")[last], 1e-9)

	assert.Equal(t, 100.0, col(t, ind, "Volume_Ratio_5d")[last], "flat volume sits at 100%")
}

func TestComputeWindowsStartNaN(t *testing.T) {
	ind := Compute(risingSeries(60))

	checks := []struct {
		column     string
		firstValid int
	}{
		{"EMA5", 4},
		{"EMA20", 19},
		{"EMA40", 39},
		{"RSI", 14},
		{"Stoch_K", 13},
		{"Stoch_D", 15},
		{"BB_Middle", 19},
		{"Ichimoku_Tenkan", 8},
		{"Ichimoku_Kijun", 25},
		{"Ichimoku_Senkou_A", 25},
		{"Ichimoku_Senkou_B", 51},
		{"Volume_MA20", 19},
		{"MACD", 25},
		{"MACD_Signal", 33},
	}

	for _, c := range checks {
		vals := col(t, ind, c.column)
		assert.True(t, math.IsNaN(vals[c.firstValid-1]),
			"%s should be NaN at %d", c.column, c.firstValid-1)
		assert.False(t, math.IsNaN(vals[c.firstValid]),
			"%s should be valid at %d", c.column, c.firstValid)
	}
}

func TestChangePercent(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := contracts.BarSeries{
		{Date: start, Close: 100, Open: 100, High: 100, Low: 100},
		{Date: start.AddDate(0, 0, 1), Close: 110, Open: 110, High: 110, Low: 110},
		{Date: start.AddDate(0, 0, 2), Close: 99, Open: 99, High: 99, Low: 99},
	}

	change := col(t, Compute(bars), "Change_Percent")
	assert.Equal(t, 0.0, change[0])
	assert.Equal(t, 10.0, change[1])
	assert.Equal(t, -10.0, change[2])
}

func TestRSIExtremes(t *testing.T) {
	rising := col(t, Compute(risingSeries(30)), "RSI")
	assert.Equal(t, 100.0, rising[29], "all-gains series maxes out")

	falling := risingSeries(30)
	for i := range falling {
		falling[i].Close = 200 - falling[i].Close
	}
	dropped := col(t, Compute(falling), "RSI")
	assert.Equal(t, 0.0, dropped[29], "all-losses series bottoms out")
}

func TestStochasticBounds(t *testing.T) {
	ind := Compute(risingSeries(30))
	k := col(t, ind, "Stoch_K")

	for i, v := range k {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0, "row %d", i)
		assert.LessOrEqual(t, v, 100.0, "row %d", i)
	}
}

func TestBollingerOrdering(t *testing.T) {
	ind := Compute(risingSeries(40))
	upper := col(t, ind, "BB_Upper")
	middle := col(t, ind, "BB_Middle")
	lower := col(t, ind, "BB_Lower")

	for i := 19; i < 40; i++ {
		assert.Greater(t, upper[i], middle[i], "row %d", i)
		assert.Less(t, lower[i], middle[i], "row %d", i)
	}
}

func TestComputeEmptySeries(t *testing.T) {
	ind := Compute(nil)
	assert.Equal(t, 0, ind.Len())
}

func TestMinRows(t *testing.T) {
	assert.Equal(t, 50, MinRows(contracts.TimeframeDaily))
	assert.Equal(t, 20, MinRows(contracts.TimeframeWeekly))
	assert.Equal(t, 6, MinRows(contracts.TimeframeMonthly))
}
