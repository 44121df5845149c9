package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/chartinsight/internal/contracts"
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <ticker...>",
	Short: "티커 파이프라인 실행",
	Long: `지정한 티커의 전체 파이프라인을 실행합니다.

이 명령어는:
- 신선도 판단 (기존 아티팩트 재사용 vs 신규 다운로드)
- 일봉 다운로드 (Yahoo/Naver 폴백)
- 품질 검증 및 정제
- 일봉/주봉/월봉 아티팩트 저장
- 기술적 지표 계산 및 저장

여러 티커를 주면 워커 풀에서 병렬로 처리합니다.

Example:
  go run ./cmd/pipeline process 005930 --market KOSPI
  go run ./cmd/pipeline process AAPL MSFT GOOG --market US`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

var processMarket string

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&processMarket, "market", "m", "", "market (US|KOSPI|KOSDAQ)")
	processCmd.MarkFlagRequired("market")
}

func runProcess(cmd *cobra.Command, args []string) error {
	m, err := contracts.ParseMarket(processMarket)
	if err != nil {
		return err
	}

	application, err := initApp()
	if err != nil {
		return err
	}

	tickers := make([]contracts.Ticker, len(args))
	for i, arg := range args {
		tickers[i] = contracts.Ticker(arg)
	}

	// Ctrl+C cancels the remaining tickers cleanly
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("=== ChartInsight Pipeline ===\n")
	fmt.Printf("Market: %s | Tickers: %d\n\n", m, len(tickers))

	results := application.batch.ProcessAll(ctx, tickers, m)

	var failed int
	for _, r := range results {
		printResult(r)
		if r != nil && !r.Success {
			failed++
		}
	}

	fmt.Printf("\nProcessed %d tickers, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d tickers failed", failed, len(results))
	}
	return nil
}

func printResult(r *contracts.ProcessingResult) {
	if r == nil {
		return
	}

	switch {
	case r.Skipped:
		fmt.Printf("⏭️  %s skipped (inactive)\n", r.Ticker)
	case r.Success:
		fmt.Printf("✅ %s [%s] rows=%d indicators=%d/%d elapsed=%s\n",
			r.Ticker, r.Strategy, r.Rows, r.IndicatorsDone, r.IndicatorsTotal, r.Elapsed.Round(time.Millisecond))

		keys := make([]string, 0, len(r.Paths))
		for key := range r.Paths {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("   %-12s %s\n", key, r.Paths[key])
		}
	default:
		fmt.Printf("❌ %s failed at %s: %s\n", r.Ticker, r.Stage, r.Error)
	}
}
