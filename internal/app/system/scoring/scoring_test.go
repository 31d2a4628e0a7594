package scoring_test

import (
	"testing"

	"github.com/tenderinsight/hub/internal/app/system/scoring"
	"github.com/tenderinsight/hub/internal/domain/models"
)

func intPtr(v int) *int { return &v }

func TestAssess_FullMatch(t *testing.T) {
	tender := models.Tender{
		IndustrySector:     "construction",
		Province:           "Gauteng",
		CIDBRequired:       true,
		CIDBGrade:          "Grade 4",
		BBBEELevelRequired: 4,
		MinYearsExperience: 5,
	}
	profile := models.CompanyProfile{
		IndustrySector:     "Construction",
		GeographicCoverage: []string{"Gauteng", "Limpopo"},
		CIDBGrade:          "Grade 6",
		BBBEELevel:         intPtr(2),
		YearsExperience:    10,
	}

	res := scoring.Assess(tender, profile)
	if res.Score != 100 {
		t.Errorf("Score = %d, want 100", res.Score)
	}
	if res.Recommendation != scoring.RecommendHighlySuitable {
		t.Errorf("Recommendation = %q, want highly suitable", res.Recommendation)
	}
	if len(res.Checklist) != 5 {
		t.Errorf("checklist has %d items, want 5", len(res.Checklist))
	}
	for _, item := range res.Checklist {
		if !item.Matched {
			t.Errorf("criterion %q unmatched, want all matched", item.Criterion)
		}
	}
}

func TestAssess_NoCriteria_Neutral(t *testing.T) {
	res := scoring.Assess(models.Tender{Title: "Bare tender"}, models.CompanyProfile{})
	if res.Score != scoring.NeutralScore {
		t.Errorf("Score = %d, want neutral %d", res.Score, scoring.NeutralScore)
	}
	if len(res.Checklist) != 0 {
		t.Errorf("checklist has %d items, want none", len(res.Checklist))
	}
}

func TestAssess_SparseTenderDoesNotPunish(t *testing.T) {
	// The tender names only a sector; province, CIDB, BBBEE, experience
	// must not appear in the checklist.
	tender := models.Tender{IndustrySector: "construction"}
	profile := models.CompanyProfile{
		IndustrySector:     "construction",
		GeographicCoverage: []string{"Gauteng"},
		YearsExperience:    2,
	}

	res := scoring.Assess(tender, profile)
	if res.Score != 100 {
		t.Errorf("Score = %d, want 100 for the single applicable criterion", res.Score)
	}
	if len(res.Checklist) != 1 {
		t.Errorf("checklist has %d items, want 1", len(res.Checklist))
	}
}

func TestAssess_PartialMatch(t *testing.T) {
	tender := models.Tender{
		IndustrySector: "construction",
		Province:       "Western Cape",
	}
	profile := models.CompanyProfile{
		IndustrySector:     "construction",
		GeographicCoverage: []string{"Gauteng"},
	}

	// Sector matches (5 of 9 points), province does not (0 of 4): 56.
	res := scoring.Assess(tender, profile)
	if res.Score != 56 {
		t.Errorf("Score = %d, want 56", res.Score)
	}
	if res.Recommendation != scoring.RecommendModeratelySuitable {
		t.Errorf("Recommendation = %q, want moderately suitable", res.Recommendation)
	}
}

func TestAssess_BBBEELowerIsBetter(t *testing.T) {
	tender := models.Tender{BBBEELevelRequired: 2}

	better := scoring.Assess(tender, models.CompanyProfile{BBBEELevel: intPtr(1)})
	if better.Score != 100 {
		t.Errorf("level 1 against required 2: Score = %d, want 100", better.Score)
	}
	worse := scoring.Assess(tender, models.CompanyProfile{BBBEELevel: intPtr(4)})
	if worse.Score != 0 {
		t.Errorf("level 4 against required 2: Score = %d, want 0", worse.Score)
	}
}

func TestAssess_CIDBGradeForms(t *testing.T) {
	tender := models.Tender{CIDBRequired: true, CIDBGrade: "Grade 4"}

	tests := []struct {
		held string
		want bool
	}{
		{"Grade 4", true},
		{"Grade 9", true},
		{"Grade 3", false},
		{"7GB", true},
		{"unrated", false},
	}
	for _, tc := range tests {
		res := scoring.Assess(tender, models.CompanyProfile{CIDBGrade: tc.held})
		if len(res.Checklist) != 1 {
			t.Fatalf("held %q: checklist has %d items, want 1", tc.held, len(res.Checklist))
		}
		if res.Checklist[0].Matched != tc.want {
			t.Errorf("held %q: matched = %v, want %v", tc.held, res.Checklist[0].Matched, tc.want)
		}
	}
}

func TestRecommendation_Bands(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, scoring.RecommendHighlySuitable},
		{80, scoring.RecommendHighlySuitable},
		{79, scoring.RecommendSuitable},
		{60, scoring.RecommendSuitable},
		{59, scoring.RecommendModeratelySuitable},
		{40, scoring.RecommendModeratelySuitable},
		{39, scoring.RecommendNotSuitable},
		{0, scoring.RecommendNotSuitable},
	}
	for _, tc := range tests {
		if got := scoring.Recommendation(tc.score); got != tc.want {
			t.Errorf("Recommendation(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
