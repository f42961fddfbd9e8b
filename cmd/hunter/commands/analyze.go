package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/hunter/internal/contracts"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "단일 종목 점수 상세",
	Long: `한 종목의 기술/펀더멘털/리스크 점수와 미충족 사유를 출력합니다.

Example:
  go run ./cmd/hunter analyze AAPL
  go run ./cmd/hunter analyze DIXON.NS --weights 0.5,1,1 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeWeights string
	analyzeJSON    bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeWeights, "weights", "w", "", "technical,fundamental,risk weights in [0,1]")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the record as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var weights *contracts.Weights
	if analyzeWeights != "" {
		w, err := contracts.ParseWeights(analyzeWeights)
		if err != nil {
			return fmt.Errorf("--weights: %w", err)
		}
		weights = &w
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.screener.AnalyzeOne(ctx, args[0], weights)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSON {
		return printJSON(out, rec)
	}

	printHeader(out, "Symbol Analysis", [][2]string{
		{"Symbol", rec.Symbol},
		{"Name", rec.Snapshot.Name.ValueOrZero()},
		{"Overall", fmt.Sprintf("%.1f%%", rec.Overall)},
		{"Technical", subScore(rec.Technical)},
		{"Fundamental", subScore(rec.Fundamental)},
		{"Risk", subScore(rec.Risk)},
		{"Close", optFloat(rec.Snapshot.LastClose, "%.2f")},
		{"RSI(14)", optFloat(rec.Snapshot.RSI14, "%.1f")},
		{"1M return", optFloat(rec.Snapshot.Return1M, "%.3f")},
		{"P/E", optFloat(rec.Snapshot.TrailingPE, "%.1f")},
		{"ROE", optFloat(rec.Snapshot.ROE, "%.3f")},
		{"D/E", optFloat(rec.Snapshot.DebtToEquity, "%.2f")},
		{"Beta", optFloat(rec.Snapshot.Beta, "%.2f")},
		{"Market cap", optCompact(rec.Snapshot.MarketCap)},
	})
	printReasons(out, rec)
	return nil
}
