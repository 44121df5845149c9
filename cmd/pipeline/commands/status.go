package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/chartinsight/internal/contracts"
	"github.com/wonny/chartinsight/internal/market"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status [market]",
	Short: "시장 세션 상태 조회",
	Long: `각 시장의 현지 시각과 세션 상태를 표시합니다.

표시 정보:
- 현지 시각과 타임존
- 세션 단계 (pre / open / post)
- 개장 여부
- 직전/당일 폐장 시각

Example:
  go run ./cmd/pipeline status
  go run ./cmd/pipeline status KOSPI`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	markets := contracts.AllMarkets()
	if len(args) == 1 {
		m, err := contracts.ParseMarket(args[0])
		if err != nil {
			return err
		}
		markets = []contracts.Market{m}
	}

	clock := market.NewClock()

	fmt.Println("=== Market Session Status ===")
	fmt.Println()

	for _, m := range markets {
		now := clock.Now(m)
		phase := clock.Phase(m)
		prevClose, todayClose := clock.SessionCloses(m)

		open := "closed"
		if clock.IsOpen(m) {
			open = "open"
		}

		fmt.Printf("📊 %s (%s)\n", m, m.TZLabel())
		fmt.Printf("   Local time:  %s\n", now.Format("2006-01-02 15:04:05 Mon"))
		fmt.Printf("   Session:     %s (%s)\n", phase, open)
		fmt.Printf("   Prev close:  %s\n", prevClose.Format("2006-01-02 15:04"))
		fmt.Printf("   Today close: %s\n", todayClose.Format("2006-01-02 15:04"))
		fmt.Println()
	}

	return nil
}
