package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "오래된 아티팩트 정리",
	Long: `보존 기간을 넘긴 CSV 아티팩트를 삭제합니다.

각 시장 폴더를 순회하며 파일 수정 시각이 기준보다 오래된
아티팩트를 제거합니다. 최신 다운로드가 이전 파일을 대체하므로
정기적으로 실행해야 디스크가 무한히 쌓이지 않습니다.

Example:
  go run ./cmd/pipeline cleanup
  go run ./cmd/pipeline cleanup --days 30`,
	RunE: runCleanup,
}

var cleanupDays int

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention in days (default from RETENTION_DAYS)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	application, err := initApp()
	if err != nil {
		return err
	}

	days := cleanupDays
	if days <= 0 {
		days = application.cfg.RetentionDays
	}
	maxAge := time.Duration(days) * 24 * time.Hour

	fmt.Printf("=== Artifact Cleanup ===\n")
	fmt.Printf("Retention: %d days\n\n", days)

	removed, err := application.sweeper.Sweep(maxAge)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Printf("✅ Removed %d artifacts\n", removed)
	return nil
}
