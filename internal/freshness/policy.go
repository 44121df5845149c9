// Package freshness decides whether on-disk market data is current
// enough to reuse or must be re-downloaded.
package freshness

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/chartinsight/internal/artifact"
	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/internal/market"
	"github.com/wonny/chartinsight/pkg/logger"
)

// Strategy is the freshness decision for a ticker
type Strategy string

const (
	StrategyUseExisting   Strategy = "use_existing"
	StrategyDownloadFresh Strategy = "download_fresh"
)

// DefaultMaxOpenAge is how stale an artifact may be while the market trades
const DefaultMaxOpenAge = time.Hour

// Policy makes freshness decisions from the artifact store and the
// session clock. A closed market never triggers a re-download: the data
// cannot have changed since the last close.
type Policy struct {
	locator    artifact.Locator
	clock      *market.Clock
	log        *logger.Logger
	maxOpenAge time.Duration
}

// NewPolicy creates a Policy with the default in-session staleness limit
func NewPolicy(loc artifact.Locator, clock *market.Clock, log *logger.Logger) *Policy {
	return &Policy{
		locator:    loc,
		clock:      clock,
		log:        log,
		maxOpenAge: DefaultMaxOpenAge,
	}
}

// WithMaxOpenAge overrides the in-session staleness limit
func (p *Policy) WithMaxOpenAge(d time.Duration) *Policy {
	p.maxOpenAge = d
	return p
}

// Decide returns the strategy for a ticker's daily OHLCV data:
//   - no artifact on disk: download fresh
//   - market open and the artifact older than the staleness limit: download fresh
//   - otherwise: use existing
//
// A lookup failure other than not-found is not evidence the data is
// stale, so it resolves to use_existing; the reuse path surfaces the
// error if the artifact really is unreadable.
func (p *Policy) Decide(ticker contracts.Ticker, m contracts.Market) Strategy {
	path, err := p.locator.Latest(ticker, m, contracts.KindOHLCV, contracts.TimeframeDaily)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return StrategyDownloadFresh
		}
		p.log.WithError(err).WithField("ticker", ticker).Warn("Artifact lookup failed, keeping existing data")
		return StrategyUseExisting
	}

	age := p.artifactAge(path, m)

	if p.clock.IsOpen(m) && age > p.maxOpenAge {
		p.log.WithFields(map[string]interface{}{
			"ticker": ticker,
			"age":    age,
		}).Info("Artifact stale during trading hours, downloading fresh")
		return StrategyDownloadFresh
	}

	p.log.WithFields(map[string]interface{}{
		"ticker": ticker,
		"age":    age,
		"path":   path,
	}).Debug("Using existing artifact")
	return StrategyUseExisting
}

// artifactAge measures how old an artifact is, preferring the
// filename-embedded bar timestamp over the file modification time.
// The embedded timestamp is naive market-local time.
func (p *Policy) artifactAge(path string, m contracts.Market) time.Duration {
	now := p.clock.Now(m)

	if id, err := artifact.ParseFilename(filepath.Base(path)); err == nil {
		ts := id.Timestamp
		local := time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), 0, m.Location())
		return now.Sub(local)
	}

	if info, err := os.Stat(path); err == nil {
		return now.Sub(info.ModTime().In(m.Location()))
	}

	// No usable timestamp: report infinitely old
	return 1<<62 - 1
}

// PageFresh reports whether a cache created at createdAt still reflects
// the market's latest close. Before and during the session it must
// postdate the previous session's close; after the bell it must postdate
// today's close.
func (p *Policy) PageFresh(createdAt time.Time, m contracts.Market) bool {
	prevClose, todayClose := p.clock.SessionCloses(m)

	switch p.clock.Phase(m) {
	case market.PhasePost:
		return createdAt.After(todayClose)
	default:
		return !createdAt.Before(prevClose)
	}
}
