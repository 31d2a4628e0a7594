// internal/app/system/workers/summarypool.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/tenderinsight/hub/internal/app/store/summaries"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/summarize"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const maxJobAttempts = 3

// SummaryPool runs a fixed set of workers that drain the summary job
// queue: each claimed job loads the tender, summarizes its description,
// and writes the summary back onto the tender document.
type SummaryPool struct {
	summaries *summarystore.Store
	tenders   *tenderstore.Store
	audit     *auditlog.Logger
	log       *zap.Logger
	size      int
	poll      time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewSummaryPool creates a pool of size workers that poll the queue at
// the given interval when it is empty.
func NewSummaryPool(summaries *summarystore.Store, tenders *tenderstore.Store, audit *auditlog.Logger, logger *zap.Logger, size int, poll time.Duration) *SummaryPool {
	if size < 1 {
		size = 1
	}
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &SummaryPool{
		summaries: summaries,
		tenders:   tenders,
		audit:     audit,
		log:       logger,
		size:      size,
		poll:      poll,
		stopCh:    make(chan struct{}),
	}
}

// Start launches the worker goroutines.
func (p *SummaryPool) Start() {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.log.Info("summary worker pool started",
		zap.Int("workers", p.size),
		zap.Duration("poll", p.poll))
}

// Stop signals the workers to stop and waits for in-flight jobs to finish.
func (p *SummaryPool) Stop() {
	close(p.stopCh)
	p.wg.Wait()
	p.log.Info("summary worker pool stopped")
}

func (p *SummaryPool) worker(id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			// Drain the queue before sleeping again.
			for p.processOne(id) {
				select {
				case <-p.stopCh:
					return
				default:
				}
			}
		}
	}
}

// processOne claims and runs a single job. Returns false when the queue
// is empty.
func (p *SummaryPool) processOne(workerID int) bool {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Long(), p.log, "summary job")
	defer cancel()

	job, ok, err := p.summaries.ClaimJob(ctx)
	if err != nil {
		p.log.Error("claim summary job failed", zap.Error(err))
		return false
	}
	if !ok {
		return false
	}

	if err := p.runJob(ctx, job.TenderID); err != nil {
		p.log.Warn("summary job failed",
			zap.String("job_id", job.ID),
			zap.String("tender_id", job.TenderID),
			zap.Int("attempts", job.Attempts),
			zap.Error(err))
		if ferr := p.summaries.FailJob(ctx, job.ID, job.Attempts, maxJobAttempts, err.Error()); ferr != nil {
			p.log.Error("record job failure failed", zap.Error(ferr))
		}
		if job.Attempts >= maxJobAttempts {
			p.audit.SummaryFailed(ctx, "", err.Error())
		}
		return true
	}

	if err := p.summaries.CompleteJob(ctx, job.ID); err != nil {
		p.log.Error("complete summary job failed", zap.Error(err))
	}
	p.log.Debug("summary job done",
		zap.Int("worker", workerID),
		zap.String("tender_id", job.TenderID))
	return true
}

func (p *SummaryPool) runJob(ctx context.Context, tenderID string) error {
	t, err := p.tenders.GetByID(ctx, tenderID)
	if err != nil {
		return err
	}
	if t.Description == "" {
		// Nothing to summarize; mark done with an empty summary.
		return nil
	}

	summary := summarize.Summarize(t.Description, summarize.DefaultMaxWords)
	return p.tenders.SetSummary(ctx, tenderID, summary)
}
