package quality

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func goodSeries(n int) contracts.BarSeries {
	s := make(contracts.BarSeries, 0, n)
	for i := 0; i < n; i++ {
		c := float64(i + 10)
		s = append(s, contracts.Bar{Date: day(i + 1), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 100})
	}
	return s
}

func TestValidate(t *testing.T) {
	gate := NewGate(logger.NewNop())

	tests := []struct {
		name    string
		mutate  func(contracts.BarSeries) contracts.BarSeries
		minRows int
		want    bool
	}{
		{
			name:    "clean series passes",
			mutate:  func(s contracts.BarSeries) contracts.BarSeries { return s },
			minRows: 5,
			want:    true,
		},
		{
			name:    "empty series fails",
			mutate:  func(s contracts.BarSeries) contracts.BarSeries { return nil },
			minRows: 0,
			want:    false,
		},
		{
			name:    "too few rows fails",
			mutate:  func(s contracts.BarSeries) contracts.BarSeries { return s[:3] },
			minRows: 5,
			want:    false,
		},
		{
			name: "NaN fails",
			mutate: func(s contracts.BarSeries) contracts.BarSeries {
				s[2].Close = math.NaN()
				return s
			},
			minRows: 5,
			want:    false,
		},
		{
			name: "negative price fails",
			mutate: func(s contracts.BarSeries) contracts.BarSeries {
				s[1].Low = -5
				return s
			},
			minRows: 5,
			want:    false,
		},
		{
			name: "high below low fails",
			mutate: func(s contracts.BarSeries) contracts.BarSeries {
				s[3].High, s[3].Low = s[3].Low, s[3].High
				return s
			},
			minRows: 5,
			want:    false,
		},
		{
			name: "duplicate dates fail",
			mutate: func(s contracts.BarSeries) contracts.BarSeries {
				s[4].Date = s[3].Date
				return s
			},
			minRows: 5,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := tt.mutate(goodSeries(10))
			assert.Equal(t, tt.want, gate.Validate(series, tt.minRows))
		})
	}
}

func TestCleanRepairsWithoutMutatingInput(t *testing.T) {
	input := contracts.BarSeries{
		{Date: day(2), Open: -10, High: 9, Low: 11, Close: 10, Volume: 100}, // negative open, inverted range
		{Date: day(1), Open: 5, High: 6, Low: 4, Close: 5, Volume: 50},
		{Date: day(2), Open: 10, High: 12, Low: 9, Close: 11, Volume: 200}, // duplicate date, last wins
		{Date: day(3), Open: 7, High: 8, Low: 6, Close: math.NaN(), Volume: 70},
	}
	original := input.Clone()

	cleaned := Clean(input)

	require.Equal(t, 2, cleaned.Len(), "NaN row dropped, duplicate collapsed")
	assert.True(t, cleaned[0].Date.Equal(day(1)))
	assert.Equal(t, 11.0, cleaned[1].Close, "later duplicate kept")

	for i := range input {
		assert.Equal(t, original[i], input[i], "input row %d mutated", i)
	}
}

func TestCleanFlipsNegativesAndSwapsRange(t *testing.T) {
	input := contracts.BarSeries{
		{Date: day(1), Open: -10, High: 9, Low: 11, Close: 10, Volume: -100},
	}

	cleaned := Clean(input)
	require.Equal(t, 1, cleaned.Len())

	b := cleaned[0]
	assert.Equal(t, 10.0, b.Open)
	assert.Equal(t, 11.0, b.High, "inverted high/low swapped")
	assert.Equal(t, 9.0, b.Low)
	assert.Equal(t, 100.0, b.Volume)
}

func TestCleanedSeriesValidates(t *testing.T) {
	gate := NewGate(logger.NewNop())

	input := contracts.BarSeries{
		{Date: day(2), Open: -10, High: 9, Low: 11, Close: 10, Volume: 100},
		{Date: day(1), Open: 5, High: 6, Low: 4, Close: 5, Volume: 50},
		{Date: day(2), Open: 10, High: 12, Low: 9, Close: 11, Volume: 200},
	}

	cleaned := Clean(input)
	assert.True(t, gate.Validate(cleaned, 1), "Clean output must pass Validate")
}

func TestRepairCloseBounds(t *testing.T) {
	input := contracts.BarSeries{
		{Date: day(1), Open: 10, High: 11, Low: 9, Close: 12, Volume: 1}, // close above high
		{Date: day(2), Open: 10, High: 11, Low: 9, Close: 8, Volume: 1},  // close below low
		{Date: day(3), Open: 10, High: 11, Low: 9, Close: 10, Volume: 1}, // in range
	}
	original := input.Clone()

	repaired := RepairCloseBounds(input)

	assert.Equal(t, 12.0, repaired[0].High)
	assert.Equal(t, 8.0, repaired[1].Low)
	assert.Equal(t, original[2], repaired[2])

	for i := range input {
		assert.Equal(t, original[i], input[i], "input row %d mutated", i)
	}
}
