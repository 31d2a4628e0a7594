// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryIngest    = "ingest"
	CategoryWorkspace = "workspace"
	CategoryAPI       = "api"
)

// Ingest event types
const (
	EventTenderUpserted    = "tender_upserted"
	EventSyncRunCompleted  = "sync_run_completed"
	EventSyncRunFailed     = "sync_run_failed"
	EventDocumentProcessed = "document_processed"
	EventSummaryGenerated  = "summary_generated"
	EventSummaryFailed     = "summary_failed"
)

// Workspace event types
const (
	EventTenderTracked        = "tender_tracked"
	EventWorkspaceStatusMoved = "workspace_status_moved"
	EventNoteAdded            = "note_added"
	EventTaskAdded            = "task_added"
	EventReadinessChecked     = "readiness_checked"
	EventProfileCreated       = "profile_created"
	EventProfileUpdated       = "profile_updated"
)

// API event types
const (
	EventQuotaExceeded  = "quota_exceeded"
	EventExportProduced = "export_produced"
)

// Event represents an audit event.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	// Event classification
	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who / what
	TeamID   string `bson:"team_id,omitempty"`
	UserID   string `bson:"user_id,omitempty"`
	TenderID string `bson:"tender_id,omitempty"`

	// Context
	IP string `bson:"ip,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter defines filters for querying audit events.
type QueryFilter struct {
	TeamID    string
	TenderID  string
	Category  string
	EventType string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log stores an audit event. The timestamp is set if the caller left it zero.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// Query returns events matching the filter, newest first.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	filter := bson.M{}
	if f.TeamID != "" {
		filter["team_id"] = f.TeamID
	}
	if f.TenderID != "" {
		filter["tender_id"] = f.TenderID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.EventType != "" {
		filter["event_type"] = f.EventType
	}
	if f.StartTime != nil || f.EndTime != nil {
		window := bson.M{}
		if f.StartTime != nil {
			window["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			window["$lte"] = *f.EndTime
		}
		filter["timestamp"] = window
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
