// internal/app/system/workers/ocdssync.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/tenderinsight/hub/internal/app/system/ingest"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// OCDSSync is a background worker that periodically pulls recent releases
// from the eTenders API.
type OCDSSync struct {
	ingest   *ingest.Service
	log      *zap.Logger
	interval time.Duration
	lookback time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewOCDSSync creates a sync worker.
//
// Parameters:
//   - svc: the ingest service
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 1 hour)
//   - lookback: how far back each sweep reaches (e.g., 48 hours, so a
//     missed run is covered by the next)
func NewOCDSSync(svc *ingest.Service, logger *zap.Logger, interval, lookback time.Duration) *OCDSSync {
	return &OCDSSync{
		ingest:   svc,
		log:      logger,
		interval: interval,
		lookback: lookback,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sync loop. The first sweep runs immediately.
func (w *OCDSSync) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("ocds sync worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("lookback", w.lookback))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OCDSSync) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("ocds sync worker stopped")
}

func (w *OCDSSync) run() {
	defer w.wg.Done()

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *OCDSSync) sweep() {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Batch(), w.log, "ocds sync sweep")
	defer cancel()

	now := time.Now().UTC()
	from := now.Add(-w.lookback).Format("2006-01-02")
	to := now.Format("2006-01-02")

	res, err := w.ingest.SyncWindow(ctx, from, to)
	if err != nil {
		w.log.Error("ocds sync sweep failed",
			zap.String("date_from", from),
			zap.String("date_to", to),
			zap.Error(err))
		return
	}

	if res.Skipped > 0 {
		w.log.Warn("sweep skipped unparseable releases", zap.Int("skipped", res.Skipped))
	}
}
