package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/screener"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "유니버스 스캔 및 순위",
	Long: `카테고리 또는 심볼 목록을 스캔하여 멀티배거 확률 순으로 출력합니다.

Overall = 가중 평균(기술/펀더멘털/리스크) × 시장 국면 보정, [5, 97] 범위.

Example:
  go run ./cmd/hunter scan --category sp600-smallcap --top 25
  go run ./cmd/hunter scan --symbols AAPL,NVDA --weights 1,0.5,0.5 --reasons
  go run ./cmd/hunter scan --category nasdaq100 --min 60 --json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanCategory    string
	scanSymbols     []string
	scanWeights     string
	scanConcurrency int
	scanMin         float64
	scanMaxSymbols  int
	scanLookback    string
	scanDeadline    time.Duration
	scanTop         int
	scanReasons     bool
	scanJSON        bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanCategory, "category", "c", "", "universe category (see 'hunter universe')")
	scanCmd.Flags().StringSliceVarP(&scanSymbols, "symbols", "s", nil, "explicit symbols, comma separated")
	scanCmd.Flags().StringVarP(&scanWeights, "weights", "w", "", "technical,fundamental,risk weights in [0,1]")
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 0, "parallel fetches (default SCAN_CONCURRENCY)")
	scanCmd.Flags().Float64Var(&scanMin, "min", 0, "minimum overall probability in percent")
	scanCmd.Flags().IntVar(&scanMaxSymbols, "max-symbols", 0, "cap on symbols scanned (default SCAN_MAX_SYMBOLS)")
	scanCmd.Flags().StringVar(&scanLookback, "lookback", "", "price history window: 1y, 2y, 3y, 5y")
	scanCmd.Flags().DurationVar(&scanDeadline, "deadline", 0, "scan deadline, e.g. 5m (default SCAN_DEADLINE)")
	scanCmd.Flags().IntVarP(&scanTop, "top", "n", 0, "show only the first N ranks")
	scanCmd.Flags().BoolVar(&scanReasons, "reasons", false, "list unmet criteria per symbol")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the full report as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	req, err := buildScanRequest(cmd.Flags().Changed("min"))
	if err != nil {
		return err
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

	if !scanJSON {
		req.OnProgress = progressPrinter(cmd)
	}

	report, err := a.screener.Scan(ctx, req)
	if err != nil {
		return err
	}

	if scanJSON {
		return printJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), report, scanTop, scanReasons)
	return nil
}

// buildScanRequest maps the flags; unset flags keep the screener defaults.
// minSet tells an explicit --min 0 apart from the flag being absent.
func buildScanRequest(minSet bool) (screener.ScanRequest, error) {
	req := screener.ScanRequest{
		Category:    scanCategory,
		Symbols:     trimAll(scanSymbols),
		Concurrency: scanConcurrency,
		MaxSymbols:  scanMaxSymbols,
		Lookback:    scanLookback,
		Deadline:    scanDeadline,
	}
	if minSet {
		threshold := scanMin
		req.MinThreshold = &threshold
	}

	if scanWeights != "" {
		w, err := contracts.ParseWeights(scanWeights)
		if err != nil {
			return req, fmt.Errorf("--weights: %w", err)
		}
		req.Weights = &w
	}

	return req, nil
}

// progressPrinter redraws one status line on stderr
func progressPrinter(cmd *cobra.Command) func(completed, total int) {
	w := cmd.ErrOrStderr()
	return func(completed, total int) {
		fmt.Fprintf(w, "\r[Scan] %d/%d symbols", completed, total)
		if completed == total {
			fmt.Fprintln(w)
		}
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
