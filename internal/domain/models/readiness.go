package models

import "time"

// ChecklistItem is a single scored criterion in a readiness assessment.
// Importance runs 1-5; unmatched items contribute nothing to the score
// but still appear in the checklist so teams can see the gaps.
type ChecklistItem struct {
	Criterion  string `bson:"criterion" json:"criterion"`
	Matched    bool   `bson:"matched" json:"matched"`
	Importance int    `bson:"importance" json:"importance"`
}

// ReadinessScore is a stored readiness assessment of one team against one
// tender. Scores are 0-100; when no criteria are applicable the engine
// records the neutral score of 50.
type ReadinessScore struct {
	ID               string          `bson:"_id" json:"id"`
	TenderID         string          `bson:"tender_id" json:"tender_id"`
	TeamID           string          `bson:"team_id" json:"team_id"`
	SuitabilityScore int             `bson:"suitability_score" json:"suitability_score"`
	Checklist        []ChecklistItem `bson:"checklist" json:"checklist"`
	Recommendation   string          `bson:"recommendation" json:"recommendation"`
	CreatedAt        time.Time       `bson:"created_at" json:"created_at"`
}
