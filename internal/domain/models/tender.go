package models

import (
	"time"
)

// Tender is the full tender document kept in MongoDB. The raw OCDS release
// is retained alongside the extracted fields so later re-processing (new
// summarizers, new scoring criteria) never needs to re-fetch upstream.
//
// The document _id is the OCDS tender id, so ingestion upserts are
// idempotent across sync runs.
type Tender struct {
	TenderID    string     `bson:"_id" json:"tender_id"`
	Title       string     `bson:"title" json:"title"`
	TitleCI     string     `bson:"title_ci" json:"-"` // Case-insensitive for search
	Description string     `bson:"description" json:"description"`
	Buyer       string     `bson:"buyer" json:"buyer,omitempty"`
	Province    string     `bson:"province" json:"province,omitempty"`
	BudgetMin   *float64   `bson:"budget_min,omitempty" json:"budget_min,omitempty"`
	BudgetMax   *float64   `bson:"budget_max,omitempty" json:"budget_max,omitempty"`
	Deadline    *time.Time `bson:"deadline,omitempty" json:"deadline,omitempty"`

	// AI summary of the tender description, filled in by the summary worker.
	Summary string `bson:"summary,omitempty" json:"summary,omitempty"`

	// Requirement fields used by the readiness scoring engine. These come
	// from the release data when present; provincial tenders rarely carry
	// all of them.
	IndustrySector     string `bson:"industry_sector,omitempty" json:"industry_sector,omitempty"`
	CIDBRequired       bool   `bson:"cidb_required,omitempty" json:"cidb_required,omitempty"`
	CIDBGrade          string `bson:"cidb_grade,omitempty" json:"cidb_grade,omitempty"`
	BBBEELevelRequired int    `bson:"bbbee_level_required,omitempty" json:"bbbee_level_required,omitempty"`
	MinYearsExperience int    `bson:"min_years_experience,omitempty" json:"min_years_experience,omitempty"`

	// Raw holds the original OCDS release JSON as received.
	Raw []byte `bson:"raw,omitempty" json:"-"`

	Date      *time.Time `bson:"date,omitempty" json:"date,omitempty"` // release date
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// Excerpt returns the leading portion of the description for list views.
func (t Tender) Excerpt(n int) string {
	if len(t.Description) <= n {
		return t.Description
	}
	return t.Description[:n] + "..."
}

// AvgBudget returns the midpoint of the budget range, or nil when no
// budget information is available.
func (t Tender) AvgBudget() *float64 {
	switch {
	case t.BudgetMin != nil && t.BudgetMax != nil:
		v := (*t.BudgetMin + *t.BudgetMax) / 2
		return &v
	case t.BudgetMin != nil:
		return t.BudgetMin
	case t.BudgetMax != nil:
		return t.BudgetMax
	}
	return nil
}

// TenderMetadata is the structured-store row mirrored into Postgres for
// each ingested tender. Search filters run against these columns; the
// authoritative document stays in MongoDB.
type TenderMetadata struct {
	ID        string     `gorm:"primaryKey;type:uuid" json:"id"`
	TenderID  string     `gorm:"uniqueIndex;not null" json:"tender_id"`
	Title     string     `json:"title"`
	Buyer     string     `gorm:"index" json:"buyer"`
	Province  string     `gorm:"index" json:"province"`
	BudgetMin *float64   `json:"budget_min"`
	BudgetMax *float64   `json:"budget_max"`
	Deadline  *time.Time `gorm:"index" json:"deadline"`
	CreatedAt time.Time  `json:"created_at"`
}

// TableName keeps the table name aligned with the original schema.
func (TenderMetadata) TableName() string { return "tender_metadata" }
