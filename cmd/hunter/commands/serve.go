package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/hunter/internal/api"
	"github.com/wonny/hunter/internal/api/handlers"
	"github.com/wonny/hunter/internal/scheduler"
	"github.com/wonny/hunter/internal/scheduler/jobs"
	"github.com/wonny/hunter/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 + 스케줄러 시작",
	Long: `REST/WebSocket API 서버와 캐시 워밍 스케줄러를 함께 시작합니다.

Endpoints:
  GET  /health                  - Health check
  POST /api/scan                - 스캔 실행 (동기)
  GET  /api/analyze/{symbol}    - 단일 종목 분석
  GET  /api/universe            - 카테고리 목록
  GET  /api/universe/{category} - 카테고리 구성 종목
  GET  /ws/scan                 - 스캔 진행 스트리밍

Example:
  go run ./cmd/hunter serve
  go run ./cmd/hunter serve --port 9000 --no-scheduler`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort        string
	serveNoScheduler bool
	serveWarmup      bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API 서버 포트 (default PORT)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "스케줄러 없이 API만 실행")
	serveCmd.Flags().BoolVar(&serveWarmup, "warmup", false, "시작 시 워밍 작업 즉시 실행")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	server := api.New(cfg, a.log, api.NewRouter(a.handlers(), a.log))
	if err := server.Listen(); err != nil {
		return err
	}

	var sched *scheduler.Scheduler
	if !serveNoScheduler {
		sched, err = a.scheduler()
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	if sched != nil {
		sched.Start()
		if serveWarmup {
			for _, name := range sched.GetAllJobs() {
				if err := sched.RunJob(name); err != nil {
					a.log.WithError(err).Warn("Warmup not started")
				}
			}
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if sched != nil {
			sched.Stop()
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Server running on %s (Ctrl+C to stop)", server.Addr()))

	if err := g.Wait(); err != nil {
		return err
	}

	a.log.Info("Server stopped")
	return nil
}

// handlers builds the API handlers over the wired app
func (a *app) handlers() api.Handlers {
	health := handlers.NewHealthHandler(logger.Service, a.store)
	if a.db != nil {
		health.WithDatabase(a.db)
	}
	if a.redis != nil && a.redis.Enabled() {
		health.WithRedis(a.redis)
	}

	return api.Handlers{
		Health:   health,
		Scan:     handlers.NewScanHandler(a.screener, a.log),
		Stream:   handlers.NewStreamHandler(a.screener, a.log),
		Universe: handlers.NewUniverseHandler(a.universe, a.log),
	}
}

// scheduler registers the warmup and maintenance jobs
func (a *app) scheduler(opts ...scheduler.Option) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log, opts...)

	defaults, err := scanDefaults(a.cfg.Scan)
	if err != nil {
		return nil, err
	}

	for _, job := range []scheduler.Job{
		jobs.NewUniverseWarmupJob(a.universe, a.cfg.WarmupCron, a.log),
		jobs.NewRegimeWarmupJob(a.regime, defaults.Lookback, a.cfg.WarmupCron, a.log),
		jobs.NewCachePruneJob(a.store, a.log),
	} {
		if err := sched.AddJob(job); err != nil {
			return nil, err
		}
	}

	return sched, nil
}
