package market

import (
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
)

// Phase is where a market sits within its trading day
type Phase string

const (
	// PhasePre before the opening bell (includes weekends)
	PhasePre Phase = "pre"

	// PhaseOpen during regular trading hours
	PhaseOpen Phase = "open"

	// PhasePost after the closing bell
	PhasePost Phase = "post"
)

// Clock answers session questions for each market in its local timezone.
// Weekends are treated as closed; exchange holidays are not modeled, so
// a holiday looks like a regular closed-after-hours day.
// ⭐ SSOT: 시장 개장/폐장 판단은 이 타입에서만 수행
type Clock struct {
	now func() time.Time
}

// NewClock creates a Clock using the system time
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockAt creates a Clock frozen at a fixed instant, for tests
func NewClockAt(t time.Time) *Clock {
	return &Clock{now: func() time.Time { return t }}
}

// Now returns the current time in the market's local timezone
func (c *Clock) Now(m contracts.Market) time.Time {
	return c.now().In(m.Location())
}

// Phase returns the market's current session phase.
// Weekends always report pre (nothing has traded, nothing will).
func (c *Clock) Phase(m contracts.Market) Phase {
	local := c.Now(m)

	if isWeekend(local) {
		return PhasePre
	}

	openMin, closeMin := m.TradingHours()
	minute := local.Hour()*60 + local.Minute()

	switch {
	case minute < openMin:
		return PhasePre
	case minute < closeMin:
		return PhaseOpen
	default:
		return PhasePost
	}
}

// IsOpen reports whether the market is currently in regular trading hours
func (c *Clock) IsOpen(m contracts.Market) bool {
	return c.Phase(m) == PhaseOpen
}

// PrevBusinessDay returns the most recent weekday strictly before t
func PrevBusinessDay(t time.Time) time.Time {
	d := t.AddDate(0, 0, -1)
	for isWeekend(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// SessionCloses returns the previous session's close and today's close as
// instants in the market's local timezone. On a weekend "today's close"
// is the upcoming Monday's; the previous close is last Friday's.
func (c *Clock) SessionCloses(m contracts.Market) (prevClose, todayClose time.Time) {
	local := c.Now(m)
	_, closeMin := m.TradingHours()

	today := local
	for isWeekend(today) {
		today = today.AddDate(0, 0, 1)
	}
	todayClose = atMinute(today, closeMin)

	prev := PrevBusinessDay(today)
	prevClose = atMinute(prev, closeMin)

	return prevClose, todayClose
}

func atMinute(t time.Time, minuteOfDay int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		minuteOfDay/60, minuteOfDay%60, 0, 0, t.Location())
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
