// Package pipeline orchestrates the per-ticker flow: freshness decision,
// download or reuse, quality gate, storage, and indicator derivation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/chartinsight/internal/artifact"
	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/internal/freshness"
	"github.com/wonny/chartinsight/internal/indicator"
	"github.com/wonny/chartinsight/internal/quality"
	"github.com/wonny/chartinsight/internal/resample"
	"github.com/wonny/chartinsight/pkg/logger"
)

// MinDailyRows is the quality gate threshold for freshly downloaded data
const MinDailyRows = 20

// Downloader fetches daily history with provider fallback
type Downloader interface {
	Download(ctx context.Context, ticker contracts.Ticker, m contracts.Market, from, to time.Time) (contracts.BarSeries, error)
}

// Storer persists OHLCV and indicator artifacts
type Storer interface {
	SaveBars(ticker contracts.Ticker, m contracts.Market, tf contracts.Timeframe, series contracts.BarSeries) (string, error)
	SaveIndicators(ticker contracts.Ticker, m contracts.Market, tf contracts.Timeframe, ind *contracts.IndicatorSeries) (string, error)
}

// Strategist decides between reusing on-disk data and downloading
type Strategist interface {
	Decide(ticker contracts.Ticker, m contracts.Market) freshness.Strategy
}

// ActiveChecker is an optional allow-list of tickers worth processing.
// Inactive tickers are skipped as a successful no-op.
type ActiveChecker interface {
	IsActive(ticker contracts.Ticker, m contracts.Market) bool
}

// Orchestrator runs the end-to-end flow for a single ticker. It carries
// no per-run state and is safe for concurrent use.
// ⭐ SSOT: 파이프라인 실행 순서는 여기서만 정의
type Orchestrator struct {
	downloader Downloader
	store      Storer
	locator    artifact.Locator
	policy     Strategist
	gate       *quality.Gate
	checker    ActiveChecker
	log        *logger.Logger

	lookbackYears int
	now           func() time.Time
}

// NewOrchestrator wires the pipeline stages together
func NewOrchestrator(
	downloader Downloader,
	store Storer,
	locator artifact.Locator,
	policy Strategist,
	gate *quality.Gate,
	log *logger.Logger,
	lookbackYears int,
) *Orchestrator {
	if lookbackYears < 1 {
		lookbackYears = 5
	}
	return &Orchestrator{
		downloader:    downloader,
		store:         store,
		locator:       locator,
		policy:        policy,
		gate:          gate,
		log:           log,
		lookbackYears: lookbackYears,
		now:           time.Now,
	}
}

// WithActiveChecker installs the optional precheck allow-list
func (o *Orchestrator) WithActiveChecker(c ActiveChecker) *Orchestrator {
	o.checker = c
	return o
}

// Process runs all stages for one ticker and always returns a result;
// failures are reported in the result, never as a panic.
func (o *Orchestrator) Process(ctx context.Context, ticker contracts.Ticker, m contracts.Market) *contracts.ProcessingResult {
	start := o.now()
	result := &contracts.ProcessingResult{Ticker: ticker, Market: m}
	defer func() {
		result.Elapsed = time.Since(start)
	}()

	log := o.log.WithFields(map[string]interface{}{
		"ticker": ticker,
		"market": m,
	})

	// precheck
	if o.checker != nil && !o.checker.IsActive(ticker, m) {
		log.Info("Ticker inactive, skipping")
		result.Success = true
		result.Skipped = true
		result.Stage = contracts.StagePrecheck
		return result
	}

	// strategy
	strategy := o.policy.Decide(ticker, m)
	result.Strategy = string(strategy)
	log.WithField("strategy", strategy).Info("Freshness strategy decided")

	var daily contracts.BarSeries
	var err error

	if strategy == freshness.StrategyUseExisting {
		daily, err = o.loadExistingDaily(ticker, m)
		if err != nil {
			log.WithError(err).Warn("Existing artifact unusable, downloading fresh")
			strategy = freshness.StrategyDownloadFresh
			result.Strategy = string(freshness.StrategyDownloadFresh)
		}
	}

	if strategy == freshness.StrategyDownloadFresh {
		daily, err = o.downloadAndSave(ctx, ticker, m, result)
		if err != nil {
			return result
		}
	} else {
		result.Rows = daily.Len()
		o.regenerateMissingDerived(ticker, m, daily, result)
	}

	// indicators
	result.Stage = contracts.StageIndicators
	o.computeIndicators(ticker, m, daily, strategy, result)

	if result.IndicatorsTotal > 0 && result.IndicatorsDone == 0 {
		result.Success = false
		result.Error = "no indicator timeframe succeeded"
		log.Error("Indicator computation failed for every timeframe")
		return result
	}

	result.Success = true
	log.WithFields(map[string]interface{}{
		"rows":       result.Rows,
		"indicators": fmt.Sprintf("%d/%d", result.IndicatorsDone, result.IndicatorsTotal),
	}).Info("Ticker processed")
	return result
}

// loadExistingDaily re-reads the newest daily artifact from disk
func (o *Orchestrator) loadExistingDaily(ticker contracts.Ticker, m contracts.Market) (contracts.BarSeries, error) {
	path, err := o.locator.Latest(ticker, m, contracts.KindOHLCV, contracts.TimeframeDaily)
	if err != nil {
		return nil, err
	}

	daily, err := artifact.ReadBars(path)
	if err != nil {
		return nil, err
	}
	if daily.IsEmpty() {
		return nil, fmt.Errorf("%w: %s parsed to an empty series", contracts.ErrStorage, path)
	}
	return daily, nil
}

// downloadAndSave runs download, quality gate, and the daily save
func (o *Orchestrator) downloadAndSave(ctx context.Context, ticker contracts.Ticker, m contracts.Market, result *contracts.ProcessingResult) (contracts.BarSeries, error) {
	result.Stage = contracts.StageDownload
	to := o.now()
	from := to.AddDate(-o.lookbackYears, 0, 0)

	raw, err := o.downloader.Download(ctx, ticker, m, from, to)
	if err != nil {
		result.Fail(contracts.StageDownload, err)
		return nil, err
	}

	result.Stage = contracts.StageValidation
	daily := quality.Clean(raw)
	if !o.gate.Validate(daily, MinDailyRows) {
		err := fmt.Errorf("%w: %s has %d usable rows, need %d", contracts.ErrValidation, ticker, daily.Len(), MinDailyRows)
		result.Fail(contracts.StageValidation, err)
		return nil, err
	}
	result.Rows = daily.Len()

	result.Stage = contracts.StageDailySave
	path, err := o.store.SaveBars(ticker, m, contracts.TimeframeDaily, daily)
	if err != nil {
		result.Fail(contracts.StageDailySave, err)
		return nil, err
	}
	result.AddPath(contracts.KindOHLCV, contracts.TimeframeDaily, path)

	// The daily save also persisted the derived weekly/monthly artifacts;
	// surface their paths on the result too.
	for _, tf := range []contracts.Timeframe{contracts.TimeframeWeekly, contracts.TimeframeMonthly} {
		if derived, err := o.locator.Latest(ticker, m, contracts.KindOHLCV, tf); err == nil {
			result.AddPath(contracts.KindOHLCV, tf, derived)
		}
	}

	return daily, nil
}

// regenerateMissingDerived backfills weekly/monthly artifacts that are
// absent on disk when reusing an existing daily series. Both reused and
// regenerated paths land on the result.
func (o *Orchestrator) regenerateMissingDerived(ticker contracts.Ticker, m contracts.Market, daily contracts.BarSeries, result *contracts.ProcessingResult) {
	derived := map[contracts.Timeframe]contracts.BarSeries{
		contracts.TimeframeWeekly:  resample.ToWeekly(daily),
		contracts.TimeframeMonthly: resample.ToMonthly(daily),
	}

	for tf, series := range derived {
		if series.IsEmpty() {
			continue
		}
		if path, err := o.locator.Latest(ticker, m, contracts.KindOHLCV, tf); err == nil {
			result.AddPath(contracts.KindOHLCV, tf, path)
			continue
		}

		path, err := o.store.SaveBars(ticker, m, tf, series)
		if err != nil {
			o.log.WithError(err).WithFields(map[string]interface{}{
				"ticker":    ticker,
				"timeframe": tf.Label(),
			}).Error("Derived artifact regeneration failed")
			continue
		}
		result.AddPath(contracts.KindOHLCV, tf, path)
		o.log.WithFields(map[string]interface{}{
			"ticker":    ticker,
			"timeframe": tf.Label(),
			"path":      path,
		}).Info("Missing derived artifact regenerated")
	}
}

// computeIndicators derives each timeframe's series, applies the
// close-bound repair, and persists the indicator battery. A timeframe
// with too little history is not attempted. On the reuse path a
// timeframe whose indicator artifact is already current is counted as
// done without recomputation.
func (o *Orchestrator) computeIndicators(ticker contracts.Ticker, m contracts.Market, daily contracts.BarSeries, strategy freshness.Strategy, result *contracts.ProcessingResult) {
	series := map[contracts.Timeframe]contracts.BarSeries{
		contracts.TimeframeDaily:   daily,
		contracts.TimeframeWeekly:  resample.ToWeekly(daily),
		contracts.TimeframeMonthly: resample.ToMonthly(daily),
	}

	for _, tf := range contracts.AllTimeframes() {
		bars := series[tf]
		if bars.Len() < indicator.MinRows(tf) {
			o.log.WithFields(map[string]interface{}{
				"ticker":    ticker,
				"timeframe": tf.Label(),
				"rows":      bars.Len(),
				"min_rows":  indicator.MinRows(tf),
			}).Debug("Too little history for indicators, skipping timeframe")
			continue
		}
		result.IndicatorsTotal++

		if strategy == freshness.StrategyUseExisting {
			if path, err := o.locator.Latest(ticker, m, contracts.KindIndicators, tf); err == nil {
				result.IndicatorsDone++
				result.AddPath(contracts.KindIndicators, tf, path)
				continue
			}
		}

		repaired := quality.RepairCloseBounds(bars)
		ind := indicator.Compute(repaired)

		path, err := o.store.SaveIndicators(ticker, m, tf, ind)
		if err != nil {
			o.log.WithError(err).WithFields(map[string]interface{}{
				"ticker":    ticker,
				"timeframe": tf.Label(),
			}).Error("Indicator save failed")
			continue
		}

		result.IndicatorsDone++
		result.AddPath(contracts.KindIndicators, tf, path)
	}
}
