package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/hunter/internal/scheduler"
)

// warmupCmd represents the warmup command
var warmupCmd = &cobra.Command{
	Use:   "warmup [job_name]",
	Short: "캐시 워밍 작업 즉시 실행",
	Long: `스케줄러 작업을 즉시 (동기) 실행합니다. 인자가 없으면 전체 실행.

등록되는 작업:
- universe_warmup: 모든 카테고리 유니버스 캐시 (WARMUP_CRON)
- regime_warmup: 시장 국면 캐시 (WARMUP_CRON)
- cache_prune: 만료된 캐시 삭제 (매시간)

Example:
  go run ./cmd/hunter warmup
  go run ./cmd/hunter warmup regime_warmup`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWarmup,
}

func init() {
	rootCmd.AddCommand(warmupCmd)
}

func runWarmup(cmd *cobra.Command, args []string) error {
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

	sched, err := a.scheduler(scheduler.WithRetry(0, 0))
	if err != nil {
		return err
	}

	names := sched.GetAllJobs()
	if len(args) == 1 {
		names = args
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tRESULT\tATTEMPTS\tDURATION\tERROR")

	failed := 0
	for _, name := range names {
		result, err := sched.RunJobSync(name)
		if err != nil {
			return err
		}
		status := "ok"
		if !result.Success {
			status = "failed"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", name, status, result.Attempts, result.Duration.Round(time.Millisecond), result.Error)
	}
	tw.Flush()

	if failed > 0 {
		return fmt.Errorf("%d warmup job(s) failed", failed)
	}
	return nil
}
