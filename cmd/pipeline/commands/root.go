package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/chartinsight/internal/artifact"
	"github.com/wonny/chartinsight/internal/freshness"
	"github.com/wonny/chartinsight/internal/market"
	"github.com/wonny/chartinsight/internal/pipeline"
	"github.com/wonny/chartinsight/internal/provider"
	"github.com/wonny/chartinsight/internal/quality"
	"github.com/wonny/chartinsight/pkg/config"
	"github.com/wonny/chartinsight/pkg/httputil"
	"github.com/wonny/chartinsight/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "ChartInsight - 시장 데이터 수집/파생 파이프라인",
	Long: `ChartInsight Market Data Pipeline

US/KOSPI/KOSDAQ 일봉 데이터를 수집하고 주봉/월봉과 기술적 지표를
파생하여 CSV 아티팩트로 저장합니다.

Usage:
  go run ./cmd/pipeline [command]

Examples:
  go run ./cmd/pipeline process 005930 --market KOSPI
  go run ./cmd/pipeline process AAPL MSFT --market US
  go run ./cmd/pipeline status KOSPI
  go run ./cmd/pipeline cleanup --days 90
  go run ./cmd/pipeline scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// app bundles the wired pipeline components shared by the commands
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	batch   *pipeline.Batch
	sweeper *artifact.Sweeper
}

// initApp loads configuration and wires the full pipeline stack.
// ⭐ SSOT: 컴포넌트 조립은 여기서만
func initApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	// The resolver owns retries, so the HTTP clients keep only the rate
	// limit. Stacking httputil retries on top would multiply attempts.
	yahooHTTP := httputil.New(log).DisableRetry().WithRateLimit(cfg.Yahoo.RateLimit, 1)
	naverHTTP := httputil.New(log).DisableRetry().WithRateLimit(cfg.Naver.RateLimit, 1)

	yahoo := provider.NewYahooClient(yahooHTTP, log, cfg.Yahoo.BaseURL)
	naver := provider.NewNaverClient(naverHTTP, log, cfg.Naver.BaseURL)
	resolver := provider.NewResolver(yahoo, naver, provider.ResolverConfig{
		YahooRetries: cfg.Yahoo.MaxRetries,
		YahooDelay:   cfg.Yahoo.RetryDelay,
		NaverRetries: cfg.Naver.MaxRetries,
		NaverDelay:   cfg.Naver.RetryDelay,
	}, log)

	store := artifact.NewStore(cfg.DataDir, log)
	locator := artifact.NewLocator(cfg.DataDir, log)
	clock := market.NewClock()
	policy := freshness.NewPolicy(locator, clock, log)
	gate := quality.NewGate(log)

	orch := pipeline.NewOrchestrator(resolver, store, locator, policy, gate, log, cfg.LookbackYears)
	batch := pipeline.NewBatch(orch, log, cfg.Workers)
	sweeper := artifact.NewSweeper(cfg.DataDir, log)

	return &app{
		cfg:     cfg,
		log:     log,
		batch:   batch,
		sweeper: sweeper,
	}, nil
}
