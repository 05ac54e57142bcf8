package main

import (
	"os"

	"github.com/wonny/tradewind/cmd/tradewind/commands"
)

// main is the entry point for the tradewind CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/tradewind [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
