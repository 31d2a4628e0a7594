package models

import "time"

// Workspace item statuses. A tender moves through the pipeline as the
// team evaluates and (possibly) bids on it.
const (
	WorkspaceStatusPending     = "pending"
	WorkspaceStatusInterested  = "interested"
	WorkspaceStatusNotEligible = "not_eligible"
	WorkspaceStatusSubmitted   = "submitted"
	WorkspaceStatusWon         = "won"
	WorkspaceStatusLost        = "lost"
)

// workspaceTransitions defines which status changes are allowed.
// Terminal states (won/lost) have no outgoing transitions.
var workspaceTransitions = map[string][]string{
	WorkspaceStatusPending:     {WorkspaceStatusInterested, WorkspaceStatusNotEligible},
	WorkspaceStatusInterested:  {WorkspaceStatusSubmitted, WorkspaceStatusNotEligible, WorkspaceStatusPending},
	WorkspaceStatusNotEligible: {WorkspaceStatusPending},
	WorkspaceStatusSubmitted:   {WorkspaceStatusWon, WorkspaceStatusLost},
}

// ValidWorkspaceStatus reports whether s is a known workspace status.
func ValidWorkspaceStatus(s string) bool {
	switch s {
	case WorkspaceStatusPending, WorkspaceStatusInterested, WorkspaceStatusNotEligible,
		WorkspaceStatusSubmitted, WorkspaceStatusWon, WorkspaceStatusLost:
		return true
	}
	return false
}

// WorkspaceTransitionAllowed reports whether a tracked tender may move
// from one status to another.
func WorkspaceTransitionAllowed(from, to string) bool {
	for _, t := range workspaceTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Task statuses within a workspace item.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	return s == TaskStatusPending || s == TaskStatusInProgress || s == TaskStatusCompleted
}

// TenderNote is a collaboration note attached to a tracked tender.
// Content is HTML-sanitized before storage.
type TenderNote struct {
	Content   string    `bson:"content" json:"content"`
	CreatedBy string    `bson:"created_by" json:"created_by"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// TenderTask is a to-do item attached to a tracked tender.
type TenderTask struct {
	Description string     `bson:"description" json:"description"`
	AssignedTo  string     `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Status      string     `bson:"status" json:"status"`
	CreatedBy   string     `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}

// WorkspaceItem tracks one tender inside a team's workspace, along with
// collaboration notes and tasks. At most one item exists per
// (team_id, tender_id) pair.
type WorkspaceItem struct {
	ID        string       `bson:"_id" json:"id"`
	TenderID  string       `bson:"tender_id" json:"tender_id"`
	TeamID    string       `bson:"team_id" json:"team_id"`
	Status    string       `bson:"status" json:"status"`
	Notes     []TenderNote `bson:"notes" json:"notes"`
	Tasks     []TenderTask `bson:"tasks" json:"tasks"`
	UpdatedBy string       `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time    `bson:"updated_at" json:"updated_at"`
}
