package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/hunter/pkg/config"
)

var (
	// Global flags
	env          string
	verbose      bool
	strategyFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hunter",
	Short: "Hunter - multibagger equity screener",
	Long: `Hunter Unified CLI

멀티배거 후보 스크리너.
유니버스 → 데이터 수집 → 점수화 → 순위 파이프라인.

Usage:
  go run ./cmd/hunter [command]

Examples:
  go run ./cmd/hunter scan --category sp500 --top 20
  go run ./cmd/hunter scan --symbols AAPL,MSFT,NVDA
  go run ./cmd/hunter analyze AAPL
  go run ./cmd/hunter universe nifty-smallcap-250
  go run ./cmd/hunter serve`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production), overrides ENV")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file, overrides STRATEGY_FILE")
}

// loadConfig reads the environment and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if strategyFile != "" {
		cfg.Scan.StrategyFile = strategyFile
	}

	return cfg, nil
}
