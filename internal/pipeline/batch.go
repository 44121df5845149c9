package pipeline

import (
	"context"
	"sync"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/pkg/logger"
)

// Batch fans a ticker list out over a bounded worker pool. One ticker's
// failure never stops the others; the pool size caps concurrent
// downloads so the providers are not hammered.
type Batch struct {
	orchestrator *Orchestrator
	log          *logger.Logger
	workers      int
}

// NewBatch creates a batch runner over the orchestrator
func NewBatch(o *Orchestrator, log *logger.Logger, workers int) *Batch {
	if workers < 1 {
		workers = 1
	}
	return &Batch{orchestrator: o, log: log, workers: workers}
}

// ProcessAll runs the pipeline for every ticker and returns results in
// input order.
func (b *Batch) ProcessAll(ctx context.Context, tickers []contracts.Ticker, m contracts.Market) []*contracts.ProcessingResult {
	results := make([]*contracts.ProcessingResult, len(tickers))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < b.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.orchestrator.Process(ctx, tickers[i], m)
			}
		}()
	}

	for i := range tickers {
		select {
		case <-ctx.Done():
			// Mark the rest cancelled and stop feeding workers
			for j := i; j < len(tickers); j++ {
				r := &contracts.ProcessingResult{Ticker: tickers[j], Market: m}
				r.Fail(contracts.StagePrecheck, ctx.Err())
				results[j] = r
			}
			close(jobs)
			wg.Wait()
			return results
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	b.logSummary(m, results)
	return results
}

// logSummary emits one aggregate line for the whole batch
func (b *Batch) logSummary(m contracts.Market, results []*contracts.ProcessingResult) {
	var succeeded, failed, skipped int
	for _, r := range results {
		switch {
		case r == nil:
			continue
		case r.Skipped:
			skipped++
		case r.Success:
			succeeded++
		default:
			failed++
		}
	}

	b.log.WithFields(map[string]interface{}{
		"market":    m,
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    failed,
		"skipped":   skipped,
	}).Info("Batch processing completed")
}
