package main

import (
	"os"

	"github.com/wonny/chartinsight/cmd/pipeline/commands"
)

// main is the entry point for the ChartInsight CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/pipeline [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
