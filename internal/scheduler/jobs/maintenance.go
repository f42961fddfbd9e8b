package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/hunter/pkg/logger"
)

// Pruner drops expired cache entries
type Pruner interface {
	Prune(ctx context.Context) (int, error)
}

// CachePruneJob removes expired cache entries
type CachePruneJob struct {
	store  Pruner
	logger *logger.Logger
}

// NewCachePruneJob creates a new cache prune job
func NewCachePruneJob(store Pruner, log *logger.Logger) *CachePruneJob {
	return &CachePruneJob{
		store:  store,
		logger: log,
	}
}

// Name returns the job name
func (j *CachePruneJob) Name() string {
	return "cache_prune"
}

// Schedule returns the cron schedule
func (j *CachePruneJob) Schedule() string {
	// Every hour at minute 5
	return "0 5 * * * *"
}

// Run executes the cache prune job
func (j *CachePruneJob) Run(ctx context.Context) error {
	removed, err := j.store.Prune(ctx)
	if err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}

	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Expired cache entries removed")
	}
	return nil
}
