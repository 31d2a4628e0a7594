// internal/app/store/summaries/summarystore.go
package summarystore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages document summaries and the summary job queue. Both live
// in MongoDB: summaries in document_summaries, queued jobs in summary_jobs.
type Store struct {
	summaries *mongo.Collection
	jobs      *mongo.Collection
}

var ErrNotFound = errors.New("document summary not found")

func New(db *mongo.Database) *Store {
	return &Store{
		summaries: db.Collection("document_summaries"),
		jobs:      db.Collection("summary_jobs"),
	}
}

// Create stores a completed document summary.
func (s *Store) Create(ctx context.Context, ds models.DocumentSummary) (models.DocumentSummary, error) {
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	ds.CreatedAt = time.Now().UTC()

	if _, err := s.summaries.InsertOne(ctx, ds); err != nil {
		return models.DocumentSummary{}, err
	}
	return ds, nil
}

// GetByID retrieves a stored summary.
func (s *Store) GetByID(ctx context.Context, id string) (models.DocumentSummary, error) {
	var ds models.DocumentSummary
	err := s.summaries.FindOne(ctx, bson.M{"_id": id}).Decode(&ds)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.DocumentSummary{}, ErrNotFound
		}
		return models.DocumentSummary{}, err
	}
	return ds, nil
}

// ByTeam lists a team's summaries, newest first.
func (s *Store) ByTeam(ctx context.Context, teamID string, limit int64) ([]models.DocumentSummary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.summaries.Find(ctx, bson.M{"team_id": teamID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DocumentSummary
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

/* ------------------------------- job queue ------------------------------- */

// EnqueueJob queues a tender for background summarization. A pending or
// processing job for the same tender is left alone.
func (s *Store) EnqueueJob(ctx context.Context, tenderID string) (models.SummaryJob, error) {
	var existing models.SummaryJob
	err := s.jobs.FindOne(ctx, bson.M{
		"tender_id": tenderID,
		"status":    bson.M{"$in": []string{models.JobStatusPending, models.JobStatusProcessing}},
	}).Decode(&existing)
	if err == nil {
		return existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.SummaryJob{}, err
	}

	job := models.SummaryJob{
		ID:        uuid.NewString(),
		TenderID:  tenderID,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.jobs.InsertOne(ctx, job); err != nil {
		return models.SummaryJob{}, err
	}
	return job, nil
}

// ClaimJob atomically claims the oldest pending job for processing.
// Returns mongo.ErrNoDocuments via ok=false when the queue is empty.
func (s *Store) ClaimJob(ctx context.Context) (models.SummaryJob, bool, error) {
	now := time.Now().UTC()
	filter := bson.M{"status": models.JobStatusPending}
	update := bson.M{
		"$set": bson.M{"status": models.JobStatusProcessing, "started_at": now},
		"$inc": bson.M{"attempts": 1},
	}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetReturnDocument(options.After)

	var job models.SummaryJob
	err := s.jobs.FindOneAndUpdate(ctx, filter, update, opts).Decode(&job)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.SummaryJob{}, false, nil
		}
		return models.SummaryJob{}, false, err
	}
	return job, true, nil
}

// CompleteJob marks a claimed job done.
func (s *Store) CompleteJob(ctx context.Context, jobID string) error {
	now := time.Now().UTC()
	_, err := s.jobs.UpdateByID(ctx, jobID, bson.M{"$set": bson.M{
		"status":  models.JobStatusDone,
		"done_at": now,
	}})
	return err
}

// FailJob records a failure. Jobs below maxAttempts are requeued as
// pending; the rest are marked failed for inspection.
func (s *Store) FailJob(ctx context.Context, jobID string, attempts, maxAttempts int, cause string) error {
	status := models.JobStatusPending
	if attempts >= maxAttempts {
		status = models.JobStatusFailed
	}
	_, err := s.jobs.UpdateByID(ctx, jobID, bson.M{"$set": bson.M{
		"status":     status,
		"last_error": cause,
	}})
	return err
}

// RequeueStale returns processing jobs that have been held past the
// threshold to the pending state. Covers workers that died mid-job.
func (s *Store) RequeueStale(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	res, err := s.jobs.UpdateMany(ctx,
		bson.M{
			"status":     models.JobStatusProcessing,
			"started_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{"status": models.JobStatusPending}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// PendingJobs returns the number of jobs waiting to be processed.
func (s *Store) PendingJobs(ctx context.Context) (int64, error) {
	return s.jobs.CountDocuments(ctx, bson.M{"status": models.JobStatusPending})
}
