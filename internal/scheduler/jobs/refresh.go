package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wonny/chartinsight/internal/artifact"
	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/internal/pipeline"
	"github.com/wonny/chartinsight/pkg/logger"
)

// RefreshJob re-runs the pipeline after a market close for every ticker
// already tracked on disk. The tracked set is discovered from the daily
// OHLCV artifacts in the market folders, so adding a ticker to the
// system is just processing it once.
// ⭐ SSOT: 정기 갱신 스케줄은 이 Job에서만
type RefreshJob struct {
	name     string
	schedule string
	markets  []contracts.Market
	batch    *pipeline.Batch
	dataDir  string
	logger   *logger.Logger
}

// NewKoreaRefreshJob refreshes KOSPI and KOSDAQ after the Seoul close
func NewKoreaRefreshJob(batch *pipeline.Batch, dataDir, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		name:     "refresh_kr",
		schedule: schedule,
		markets:  []contracts.Market{contracts.MarketKOSPI, contracts.MarketKOSDAQ},
		batch:    batch,
		dataDir:  dataDir,
		logger:   log,
	}
}

// NewUSRefreshJob refreshes the US market after the New York close
func NewUSRefreshJob(batch *pipeline.Batch, dataDir, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{
		name:     "refresh_us",
		schedule: schedule,
		markets:  []contracts.Market{contracts.MarketUS},
		batch:    batch,
		dataDir:  dataDir,
		logger:   log,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string { return j.name }

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string { return j.schedule }

// Run refreshes every tracked ticker in the job's markets
func (j *RefreshJob) Run(ctx context.Context) error {
	var processed, failed int

	for _, m := range j.markets {
		tickers := TrackedTickers(j.dataDir, m)
		if len(tickers) == 0 {
			j.logger.WithField("market", m).Info("No tracked tickers, nothing to refresh")
			continue
		}

		results := j.batch.ProcessAll(ctx, tickers, m)
		for _, r := range results {
			processed++
			if r != nil && !r.Success {
				failed++
			}
		}
	}

	if processed > 0 && failed == processed {
		return fmt.Errorf("refresh failed for all %d tickers", processed)
	}

	j.logger.WithFields(map[string]interface{}{
		"job":       j.name,
		"processed": processed,
		"failed":    failed,
	}).Info("Refresh completed")
	return nil
}

// TrackedTickers lists the distinct tickers with a daily OHLCV artifact
// in a market folder, sorted for stable processing order.
func TrackedTickers(dataDir string, m contracts.Market) []contracts.Ticker {
	dir := filepath.Join(dataDir, m.Folder())

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		id, err := artifact.ParseFilename(entry.Name())
		if err != nil {
			continue
		}
		if id.Kind != contracts.KindOHLCV || id.Timeframe != contracts.TimeframeDaily {
			continue
		}
		seen[id.Ticker] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	tickers := make([]contracts.Ticker, len(names))
	for i, name := range names {
		tickers[i] = contracts.Ticker(name)
	}
	return tickers
}
