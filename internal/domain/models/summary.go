package models

import "time"

// DocumentSummary is a stored result of text extraction + summarization
// for one uploaded tender document (or archive of documents).
type DocumentSummary struct {
	ID          string    `bson:"_id" json:"document_id"`
	TeamID      string    `bson:"team_id,omitempty" json:"team_id,omitempty"`
	Filename    string    `bson:"filename" json:"filename"`
	ContentType string    `bson:"content_type" json:"content_type"`
	TextContent string    `bson:"text_content" json:"-"`
	Summary     string    `bson:"summary" json:"summary"`
	WordCount   int       `bson:"word_count" json:"word_count"`
	// ObjectKey is where the original upload lives in blob storage.
	ObjectKey string    `bson:"object_key,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Summary job statuses.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusFailed     = "failed"
)

// SummaryJob is a queued request to summarize an ingested tender's
// description. The summary worker claims pending jobs, runs the
// summarizer, and writes the result back onto the tender document.
type SummaryJob struct {
	ID        string     `bson:"_id" json:"id"`
	TenderID  string     `bson:"tender_id" json:"tender_id"`
	Status    string     `bson:"status" json:"status"`
	Attempts  int        `bson:"attempts" json:"attempts"`
	LastError string     `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	StartedAt *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	DoneAt    *time.Time `bson:"done_at,omitempty" json:"done_at,omitempty"`
}
