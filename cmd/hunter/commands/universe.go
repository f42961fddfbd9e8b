package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/hunter/internal/universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe [CATEGORY]",
	Short: "유니버스 카테고리 조회",
	Long: `인자가 없으면 지원 카테고리를, 카테고리를 주면 구성 종목을 출력합니다.
모든 provider 실패 시 정적 목록으로 대체되며 degraded로 표시됩니다.

Example:
  go run ./cmd/hunter universe
  go run ./cmd/hunter universe nifty-midcap-150`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUniverse,
}

var universeJSON bool

func init() {
	rootCmd.AddCommand(universeCmd)

	universeCmd.Flags().BoolVar(&universeJSON, "json", false, "print as JSON")
}

func runUniverse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		if universeJSON {
			return printJSON(out, universe.Categories())
		}
		for _, c := range universe.Categories() {
			fmt.Fprintf(out, "   • %s\n", c)
		}
		return nil
	}

	category := args[0]
	if _, ok := universe.Fallback(category); !ok {
		return fmt.Errorf("unknown category %q (known: %s)", category, strings.Join(universe.Categories(), ", "))
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

	res := a.universe.Resolve(ctx, category)
	if universeJSON {
		return printJSON(out, res)
	}

	printHeader(out, "Universe", [][2]string{
		{"Category", res.Category},
		{"Source", res.Source},
		{"Symbols", fmt.Sprintf("%d", len(res.Symbols))},
	})
	if res.Degraded {
		printWarning(out, fmt.Sprintf("Served from static list: %s", res.Reason))
	}
	for i := 0; i < len(res.Symbols); i += 10 {
		end := i + 10
		if end > len(res.Symbols) {
			end = len(res.Symbols)
		}
		fmt.Fprintf(out, "   %s\n", strings.Join(res.Symbols[i:end], " "))
	}
	return nil
}
