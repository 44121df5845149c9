// Package resample derives weekly and monthly OHLCV series from daily bars.
// Buckets are calendar-aligned: weeks end on Sunday and carry the Sunday
// date, months carry the last calendar day of the month. Aggregation is
// open=first, high=max, low=min, close=last, volume=sum.
package resample

import (
	"sort"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
)

// Input gates: below these the derived series is too sparse to be useful
const (
	minDailyRowsForWeekly  = 7
	minDailyRowsForMonthly = 30
)

// ToWeekly aggregates daily bars into Sunday-ending calendar weeks.
// Fewer than 7 daily rows yields an empty series.
func ToWeekly(daily contracts.BarSeries) contracts.BarSeries {
	if daily.Len() < minDailyRowsForWeekly {
		return nil
	}
	return aggregate(daily, weekEnd)
}

// ToMonthly aggregates daily bars into calendar months stamped with the
// month-end date. Fewer than 30 daily rows yields an empty series.
func ToMonthly(daily contracts.BarSeries) contracts.BarSeries {
	if daily.Len() < minDailyRowsForMonthly {
		return nil
	}
	return aggregate(daily, monthEnd)
}

// weekEnd returns the Sunday on or after d
func weekEnd(d time.Time) time.Time {
	offset := (7 - int(d.Weekday())) % 7
	return d.AddDate(0, 0, offset)
}

// monthEnd returns the last calendar day of d's month
func monthEnd(d time.Time) time.Time {
	firstOfNext := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

func aggregate(daily contracts.BarSeries, bucketOf func(time.Time) time.Time) contracts.BarSeries {
	sorted := daily.Clone()
	sorted.Sort()

	type bucket struct {
		bar contracts.Bar
	}

	buckets := make(map[time.Time]*bucket)
	var keys []time.Time

	for _, b := range sorted {
		key := bucketOf(b.Date)
		bk, ok := buckets[key]
		if !ok {
			buckets[key] = &bucket{bar: contracts.Bar{
				Date:   key,
				Open:   b.Open,
				High:   b.High,
				Low:    b.Low,
				Close:  b.Close,
				Volume: b.Volume,
			}}
			keys = append(keys, key)
			continue
		}

		if b.High > bk.bar.High {
			bk.bar.High = b.High
		}
		if b.Low < bk.bar.Low {
			bk.bar.Low = b.Low
		}
		bk.bar.Close = b.Close
		bk.bar.Volume += b.Volume
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := make(contracts.BarSeries, 0, len(keys))
	for _, key := range keys {
		bar := buckets[key].bar
		if !bar.IsFinite() {
			continue
		}
		out = append(out, bar)
	}
	return out
}
