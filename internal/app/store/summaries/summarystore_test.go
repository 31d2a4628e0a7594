package summarystore_test

import (
	"errors"
	"testing"
	"time"

	summarystore "github.com/tenderinsight/hub/internal/app/store/summaries"
	"github.com/tenderinsight/hub/internal/domain/models"
	"github.com/tenderinsight/hub/internal/testutil"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := summarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.DocumentSummary{
		TeamID:      "team-1",
		Filename:    "tender-pack.pdf",
		ContentType: "application/pdf",
		TextContent: "Full extracted text of the tender pack.",
		Summary:     "Short summary.",
		WordCount:   7,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated document ID")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Summary != "Short summary." {
		t.Errorf("Summary = %q, want stored summary", got.Summary)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := summarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, "missing")
	if !errors.Is(err, summarystore.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestByTeam_NewestFirstWithLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := summarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if _, err := store.Create(ctx, models.DocumentSummary{TeamID: "team-1", Filename: name}); err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := store.Create(ctx, models.DocumentSummary{TeamID: "team-2", Filename: "other.pdf"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.ByTeam(ctx, "team-1", 2)
	if err != nil {
		t.Fatalf("ByTeam failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2", len(got))
	}
	if got[0].Filename != "c.pdf" {
		t.Errorf("first = %q, want newest (c.pdf)", got[0].Filename)
	}
}

func TestJobLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := summarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	job, err := store.EnqueueJob(ctx, "ocds-1")
	if err != nil {
		t.Fatalf("EnqueueJob failed: %v", err)
	}
	if job.Status != models.JobStatusPending {
		t.Fatalf("Status = %q, want pending", job.Status)
	}

	// Enqueueing again while pending must not create a second job.
	again, err := store.EnqueueJob(ctx, "ocds-1")
	if err != nil {
		t.Fatalf("second EnqueueJob failed: %v", err)
	}
	if again.ID != job.ID {
		t.Error("expected the existing pending job back, not a new one")
	}

	claimed, ok, err := store.ClaimJob(ctx)
	if err != nil {
		t.Fatalf("ClaimJob failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a claimable job")
	}
	if claimed.Status != models.JobStatusProcessing {
		t.Errorf("Status = %q, want processing", claimed.Status)
	}
	if claimed.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", claimed.Attempts)
	}

	// Queue is now empty.
	if _, ok, err := store.ClaimJob(ctx); err != nil || ok {
		t.Fatalf("ClaimJob on empty queue: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	if err := store.CompleteJob(ctx, claimed.ID); err != nil {
		t.Fatalf("CompleteJob failed: %v", err)
	}
	n, err := store.PendingJobs(ctx)
	if err != nil {
		t.Fatalf("PendingJobs failed: %v", err)
	}
	if n != 0 {
		t.Errorf("PendingJobs = %d, want 0", n)
	}
}

func TestFailJob_RetriesThenFails(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := summarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.EnqueueJob(ctx, "ocds-1"); err != nil {
		t.Fatalf("EnqueueJob failed: %v", err)
	}

	claimed, ok, err := store.ClaimJob(ctx)
	if err != nil || !ok {
		t.Fatalf("ClaimJob: ok=%v err=%v", ok, err)
	}

	// Below maxAttempts: back to pending.
	if err := store.FailJob(ctx, claimed.ID, claimed.Attempts, 3, "summarizer crashed"); err != nil {
		t.Fatalf("FailJob failed: %v", err)
	}
	n, err := store.PendingJobs(ctx)
	if err != nil {
		t.Fatalf("PendingJobs failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("PendingJobs = %d, want 1 (requeued)", n)
	}

	// At maxAttempts: marked failed, not requeued.
	claimed, ok, err = store.ClaimJob(ctx)
	if err != nil || !ok {
		t.Fatalf("re-ClaimJob: ok=%v err=%v", ok, err)
	}
	if err := store.FailJob(ctx, claimed.ID, 3, 3, "summarizer crashed again"); err != nil {
		t.Fatalf("FailJob failed: %v", err)
	}
	n, err = store.PendingJobs(ctx)
	if err != nil {
		t.Fatalf("PendingJobs failed: %v", err)
	}
	if n != 0 {
		t.Errorf("PendingJobs = %d, want 0 (job is failed)", n)
	}
}

func TestRequeueStale(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := summarystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.EnqueueJob(ctx, "ocds-1"); err != nil {
		t.Fatalf("EnqueueJob failed: %v", err)
	}
	if _, ok, err := store.ClaimJob(ctx); err != nil || !ok {
		t.Fatalf("ClaimJob: ok=%v err=%v", ok, err)
	}

	// Freshly claimed jobs are not stale.
	n, err := store.RequeueStale(ctx, time.Hour)
	if err != nil {
		t.Fatalf("RequeueStale failed: %v", err)
	}
	if n != 0 {
		t.Errorf("requeued %d, want 0", n)
	}

	// With a zero threshold the claimed job counts as stale.
	time.Sleep(10 * time.Millisecond)
	n, err = store.RequeueStale(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("RequeueStale failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("requeued %d, want 1", n)
	}

	pending, err := store.PendingJobs(ctx)
	if err != nil {
		t.Fatalf("PendingJobs failed: %v", err)
	}
	if pending != 1 {
		t.Errorf("PendingJobs = %d, want 1", pending)
	}
}
