// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/tenderinsight/hub/internal/app/store/summaries"
	"go.uber.org/zap"
)

// StaleSummaryRequeueJob creates a job that returns summary jobs stuck in
// processing to the pending queue. Covers workers that died mid-job.
func StaleSummaryRequeueJob(store *summarystore.Store, logger *zap.Logger, threshold time.Duration) Job {
	return Job{
		Name:     "stale-summary-requeue",
		Interval: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			count, err := store.RequeueStale(ctx, threshold)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("requeued stale summary jobs",
					zap.Int64("count", count),
					zap.Duration("threshold", threshold))
			}
			return nil
		},
	}
}
