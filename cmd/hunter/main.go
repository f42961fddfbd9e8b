package main

import (
	"os"

	"github.com/wonny/hunter/cmd/hunter/commands"
)

// main is the entry point for the hunter CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/hunter [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
