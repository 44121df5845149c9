package resample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chartinsight/internal/contracts"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// dailyRun builds n consecutive calendar days of bars starting at start,
// with close = 1, 2, 3, ... and volume = 10 each.
func dailyRun(start time.Time, n int) contracts.BarSeries {
	s := make(contracts.BarSeries, 0, n)
	for i := 0; i < n; i++ {
		c := float64(i + 1)
		s = append(s, contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 10,
		})
	}
	return s
}

func TestToWeeklyBelowMinimum(t *testing.T) {
	s := dailyRun(day(2025, 3, 3), 6)
	assert.Empty(t, ToWeekly(s))
}

func TestToWeeklyOneCalendarWeek(t *testing.T) {
	// Mon 2025-03-03 .. Fri 2025-03-07 plus the next Monday: the first
	// five days collapse into the week ending Sunday 2025-03-09.
	s := dailyRun(day(2025, 3, 3), 5)
	s = append(s, contracts.Bar{
		Date: day(2025, 3, 10), Open: 9, High: 9.5, Low: 8.5, Close: 9, Volume: 10,
	})

	weekly := ToWeekly(s)
	require.Len(t, weekly, 2)

	first := weekly[0]
	assert.Equal(t, day(2025, 3, 9), first.Date, "week bucket stamped with Sunday")
	assert.Equal(t, 1.0, first.Open, "open of first day")
	assert.Equal(t, 5.5, first.High, "max high of the week")
	assert.Equal(t, 0.5, first.Low, "min low of the week")
	assert.Equal(t, 5.0, first.Close, "close of last day")
	assert.Equal(t, 50.0, first.Volume, "summed volume")

	assert.Equal(t, day(2025, 3, 16), weekly[1].Date)
}

func TestToWeeklySundayStaysInOwnWeek(t *testing.T) {
	s := dailyRun(day(2025, 3, 3), 6) // Mon..Sat
	s = append(s, contracts.Bar{
		Date: day(2025, 3, 9), Open: 7, High: 7, Low: 7, Close: 7, Volume: 10,
	})

	weekly := ToWeekly(s)
	require.Len(t, weekly, 1)
	assert.Equal(t, day(2025, 3, 9), weekly[0].Date)
	assert.Equal(t, 7.0, weekly[0].Close, "Sunday bar closes its own week")
}

func TestToMonthlyBelowMinimum(t *testing.T) {
	s := dailyRun(day(2025, 1, 1), 29)
	assert.Empty(t, ToMonthly(s))
}

func TestToMonthly(t *testing.T) {
	// 31 days of January plus 5 of February
	s := dailyRun(day(2025, 1, 1), 36)

	monthly := ToMonthly(s)
	require.Len(t, monthly, 2)

	jan := monthly[0]
	assert.Equal(t, day(2025, 1, 31), jan.Date, "month bucket stamped with month end")
	assert.Equal(t, 1.0, jan.Open)
	assert.Equal(t, 31.0, jan.Close)
	assert.Equal(t, 310.0, jan.Volume)

	feb := monthly[1]
	assert.Equal(t, day(2025, 2, 28), feb.Date)
	assert.Equal(t, 32.0, feb.Open)
	assert.Equal(t, 36.0, feb.Close)
}

func TestAggregateSortsUnorderedInput(t *testing.T) {
	s := dailyRun(day(2025, 3, 3), 7)
	// shuffle a couple of entries
	s[0], s[4] = s[4], s[0]
	s[2], s[6] = s[6], s[2]

	weekly := ToWeekly(s)
	require.NotEmpty(t, weekly)
	assert.Equal(t, 1.0, weekly[0].Open, "open taken from chronologically first bar")
	assert.Equal(t, 5.0, weekly[0].Close, "close taken from chronologically last bar in week")
}
