// Package scoring implements the readiness scoring engine: a weighted
// checklist matching a company profile against a tender's requirements.
//
// Each applicable criterion carries an importance weight; matched criteria
// contribute their weight to the score, which is normalized to 0-100.
// When a tender states no scoreable requirements at all, the engine
// returns the neutral score of 50 rather than claiming a perfect match.
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tenderinsight/hub/internal/domain/models"
)

// Criterion importance weights.
const (
	weightSector     = 5
	weightProvince   = 4
	weightCIDB       = 5
	weightBBBEE      = 4
	weightExperience = 3
)

// NeutralScore is returned when no criteria are applicable.
const NeutralScore = 50

// Recommendation bands.
const (
	RecommendHighlySuitable     = "Highly suitable - strong match for requirements"
	RecommendSuitable           = "Suitable - good match with some gaps"
	RecommendModeratelySuitable = "Moderately suitable - significant gaps exist"
	RecommendNotSuitable        = "Not suitable - major requirements not met"
)

// Result is the outcome of one assessment.
type Result struct {
	Score          int
	Checklist      []models.ChecklistItem
	Recommendation string
}

// Assess scores a company profile against a tender. Criteria are only
// applied when the tender states the requirement AND the profile carries
// the corresponding field, so sparse tenders don't punish anyone.
func Assess(t models.Tender, p models.CompanyProfile) Result {
	var (
		checklist []models.ChecklistItem
		points    int
		maxPoints int
	)

	add := func(criterion string, matched bool, importance int) {
		maxPoints += importance
		if matched {
			points += importance
		}
		checklist = append(checklist, models.ChecklistItem{
			Criterion:  criterion,
			Matched:    matched,
			Importance: importance,
		})
	}

	if t.IndustrySector != "" && p.IndustrySector != "" {
		matched := strings.EqualFold(t.IndustrySector, p.IndustrySector)
		add(fmt.Sprintf("Industry sector match: %s", t.IndustrySector), matched, weightSector)
	}

	if t.Province != "" && len(p.GeographicCoverage) > 0 {
		matched := p.CoversProvince(t.Province)
		add(fmt.Sprintf("Operates in province: %s", t.Province), matched, weightProvince)
	}

	if t.CIDBRequired && p.CIDBGrade != "" {
		required := gradeNumber(t.CIDBGrade)
		held := gradeNumber(p.CIDBGrade)
		// Parse failure on either side counts as unmatched.
		matched := required > 0 && held > 0 && held >= required
		add(fmt.Sprintf("Has required CIDB grade: %s", t.CIDBGrade), matched, weightCIDB)
	}

	if t.BBBEELevelRequired > 0 && p.BBBEELevel != nil {
		// Lower BBBEE levels are better; level 1 beats level 4.
		matched := *p.BBBEELevel <= t.BBBEELevelRequired
		add(fmt.Sprintf("Meets BBBEE level requirement: %d", t.BBBEELevelRequired), matched, weightBBBEE)
	}

	if t.MinYearsExperience > 0 {
		matched := p.YearsExperience >= t.MinYearsExperience
		add(fmt.Sprintf("Has required experience: %d years", t.MinYearsExperience), matched, weightExperience)
	}

	score := NeutralScore
	if maxPoints > 0 {
		score = int(math.Round(float64(points) / float64(maxPoints) * 100))
	}

	return Result{
		Score:          score,
		Checklist:      checklist,
		Recommendation: Recommendation(score),
	}
}

// Recommendation maps a 0-100 score to its advisory band.
func Recommendation(score int) string {
	switch {
	case score >= 80:
		return RecommendHighlySuitable
	case score >= 60:
		return RecommendSuitable
	case score >= 40:
		return RecommendModeratelySuitable
	default:
		return RecommendNotSuitable
	}
}

// gradeNumber extracts the numeric part of a CIDB grade string like
// "Grade 7" or "7GB". Returns 0 when no number is present.
func gradeNumber(grade string) int {
	fields := strings.Fields(strings.TrimSpace(grade))
	if len(fields) == 0 {
		return 0
	}
	last := fields[len(fields)-1]
	if n, err := strconv.Atoi(last); err == nil {
		return n
	}
	// Tolerate forms like "7GB": leading digits only.
	i := 0
	for i < len(last) && last[i] >= '0' && last[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0
	}
	n, _ := strconv.Atoi(last[:i])
	return n
}
