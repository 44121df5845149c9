package artifact

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/chartinsight/internal/contracts"
)

// Identity is everything an artifact filename encodes:
// {ticker}_{kind}_{tf}_{YYYYMMDD}_{HHMMSS}_{KST|EST}.csv
// Timestamp is the latest BAR timestamp in the file, not the save time,
// so freshness decisions survive late re-saves of old data.
type Identity struct {
	Ticker    string
	Kind      contracts.Kind
	Timeframe contracts.Timeframe
	Timestamp time.Time
	TZ        string
}

const (
	fnDateLayout = "20060102"
	fnTimeLayout = "150405"
)

// Filename renders the identity as an artifact filename
func (id Identity) Filename() string {
	return fmt.Sprintf("%s_%s_%s_%s_%s_%s.csv",
		id.Ticker,
		id.Kind,
		id.Timeframe,
		id.Timestamp.Format(fnDateLayout),
		id.Timestamp.Format(fnTimeLayout),
		id.TZ,
	)
}

// ParseFilename decodes an artifact filename back into an Identity.
// The ticker segment may itself contain underscores, so fields are
// consumed from the right.
func ParseFilename(name string) (Identity, error) {
	base := strings.TrimSuffix(name, ".csv")
	if base == name {
		return Identity{}, fmt.Errorf("not a csv artifact: %q", name)
	}

	parts := strings.Split(base, "_")
	if len(parts) < 6 {
		return Identity{}, fmt.Errorf("malformed artifact name: %q", name)
	}

	n := len(parts)
	tz := parts[n-1]
	timeStr := parts[n-2]
	dateStr := parts[n-3]
	tf := parts[n-4]
	kind := parts[n-5]
	ticker := strings.Join(parts[:n-5], "_")

	if tz != "KST" && tz != "EST" {
		return Identity{}, fmt.Errorf("unknown timezone label in %q: %s", name, tz)
	}

	switch contracts.Timeframe(tf) {
	case contracts.TimeframeDaily, contracts.TimeframeWeekly, contracts.TimeframeMonthly:
	default:
		return Identity{}, fmt.Errorf("unknown timeframe in %q: %s", name, tf)
	}

	ts, err := time.Parse(fnDateLayout+fnTimeLayout, dateStr+timeStr)
	if err != nil {
		return Identity{}, fmt.Errorf("bad timestamp in %q: %w", name, err)
	}

	return Identity{
		Ticker:    ticker,
		Kind:      contracts.Kind(kind),
		Timeframe: contracts.Timeframe(tf),
		Timestamp: ts,
		TZ:        tz,
	}, nil
}
