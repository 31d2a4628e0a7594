package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTeam inserts a team on the given tier and returns it.
func (f *Fixtures) CreateTeam(ctx context.Context, name, tier string) models.Team {
	f.t.Helper()
	now := time.Now().UTC()
	team := models.Team{
		ID:        uuid.NewString(),
		Name:      name,
		NameCI:    text.Fold(name),
		Tier:      tier,
		SeatCount: 1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("fixture insert team: %v", err)
	}
	return team
}

// CreateTender inserts a tender document and returns it.
func (f *Fixtures) CreateTender(ctx context.Context, tenderID, title, province string) models.Tender {
	f.t.Helper()
	now := time.Now().UTC()
	deadline := now.AddDate(0, 1, 0)
	tender := models.Tender{
		TenderID:    tenderID,
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: "Supply and delivery of " + title + " for the provincial department.",
		Buyer:       "Department of Public Works",
		Province:    province,
		Deadline:    &deadline,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("tenders").InsertOne(ctx, tender); err != nil {
		f.t.Fatalf("fixture insert tender: %v", err)
	}
	return tender
}

// CreateScoredTender inserts a tender carrying requirement fields for
// readiness assessment.
func (f *Fixtures) CreateScoredTender(ctx context.Context, tenderID, sector, province string) models.Tender {
	f.t.Helper()
	tender := f.CreateTender(ctx, tenderID, "Requirement-bearing tender", province)
	update := map[string]interface{}{
		"industry_sector":      sector,
		"cidb_required":        true,
		"cidb_grade":           "Grade 5",
		"bbbee_level_required": 4,
		"min_years_experience": 3,
	}
	if _, err := f.db.Collection("tenders").UpdateByID(ctx, tenderID,
		map[string]interface{}{"$set": update}); err != nil {
		f.t.Fatalf("fixture update tender: %v", err)
	}
	tender.IndustrySector = sector
	tender.CIDBRequired = true
	tender.CIDBGrade = "Grade 5"
	tender.BBBEELevelRequired = 4
	tender.MinYearsExperience = 3
	return tender
}

// CreateProfile inserts a company profile for the team and returns it.
func (f *Fixtures) CreateProfile(ctx context.Context, teamID, sector string, provinces ...string) models.CompanyProfile {
	f.t.Helper()
	now := time.Now().UTC()
	level := 2
	profile := models.CompanyProfile{
		ID:                 uuid.NewString(),
		TeamID:             teamID,
		IndustrySector:     sector,
		ServicesProvided:   []string{"general building"},
		GeographicCoverage: provinces,
		YearsExperience:    5,
		ContactEmail:       "bids@example.co.za",
		BBBEELevel:         &level,
		CIDBGrade:          "Grade 6",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := f.db.Collection("company_profiles").InsertOne(ctx, profile); err != nil {
		f.t.Fatalf("fixture insert profile: %v", err)
	}
	return profile
}

// CreateWorkspaceItem tracks a tender for the team and returns the item.
func (f *Fixtures) CreateWorkspaceItem(ctx context.Context, teamID, tenderID, status string) models.WorkspaceItem {
	f.t.Helper()
	now := time.Now().UTC()
	item := models.WorkspaceItem{
		ID:        uuid.NewString(),
		TenderID:  tenderID,
		TeamID:    teamID,
		Status:    status,
		Notes:     []models.TenderNote{},
		Tasks:     []models.TenderTask{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("workspace_items").InsertOne(ctx, item); err != nil {
		f.t.Fatalf("fixture insert workspace item: %v", err)
	}
	return item
}

// CreateReadinessScore stores a readiness score for the pair and returns it.
func (f *Fixtures) CreateReadinessScore(ctx context.Context, teamID, tenderID string, score int) models.ReadinessScore {
	f.t.Helper()
	rs := models.ReadinessScore{
		ID:               uuid.NewString(),
		TenderID:         tenderID,
		TeamID:           teamID,
		SuitabilityScore: score,
		Recommendation:   "Suitable for application",
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := f.db.Collection("readiness_scores").InsertOne(ctx, rs); err != nil {
		f.t.Fatalf("fixture insert readiness score: %v", err)
	}
	return rs
}
