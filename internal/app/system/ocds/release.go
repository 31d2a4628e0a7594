package ocds

import (
	"strings"
	"time"

	"github.com/tenderinsight/hub/internal/domain/models"
	"github.com/tidwall/gjson"
)

// ParseRelease maps one raw OCDS release into a Tender document. Releases
// vary: some carry tender.* nesting, some are flattened. Every path is
// tried with a fallback; only the tender id is mandatory.
func ParseRelease(release gjson.Result) (models.Tender, bool) {
	id := firstString(release, "ocid", "id", "tender.id")
	if id == "" {
		return models.Tender{}, false
	}

	t := models.Tender{
		TenderID:    id,
		Title:       firstString(release, "tender.title", "title"),
		Description: firstString(release, "tender.description", "description"),
		Buyer:       firstString(release, "buyer.name", "buyer"),
		Province:    firstString(release, "tender.procuringEntity.address.region", "province"),
		Raw:         []byte(release.Raw),
	}

	if v := release.Get("tender.value.amount"); v.Exists() {
		amount := v.Float()
		t.BudgetMin = &amount
		t.BudgetMax = &amount
	} else if v := release.Get("value.amount"); v.Exists() {
		amount := v.Float()
		t.BudgetMin = &amount
		t.BudgetMax = &amount
	}

	if d := parseTime(firstString(release, "tender.tenderPeriod.endDate", "tenderPeriod.endDate", "deadline")); d != nil {
		t.Deadline = d
	}
	if d := parseTime(firstString(release, "date")); d != nil {
		t.Date = d
	}

	t.IndustrySector = firstString(release, "tender.mainProcurementCategory", "industry_sector")
	if v := release.Get("tender.cidbGrade"); v.Exists() {
		t.CIDBRequired = true
		t.CIDBGrade = v.String()
	} else if v := release.Get("cidb_grade"); v.Exists() {
		t.CIDBRequired = true
		t.CIDBGrade = v.String()
	}
	if v := release.Get("bbbee_level_required"); v.Exists() {
		t.BBBEELevelRequired = int(v.Int())
	}
	if v := release.Get("min_years_experience"); v.Exists() {
		t.MinYearsExperience = int(v.Int())
	}

	return t, true
}

// Metadata derives the structured-store row from a parsed tender.
func Metadata(t models.Tender) models.TenderMetadata {
	return models.TenderMetadata{
		TenderID:  t.TenderID,
		Title:     t.Title,
		Buyer:     t.Buyer,
		Province:  t.Province,
		BudgetMin: t.BudgetMin,
		BudgetMax: t.BudgetMax,
		Deadline:  t.Deadline,
	}
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

// parseTime accepts RFC3339 with or without the trailing Z, plus the
// bare date form some releases use.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			u := ts.UTC()
			return &u
		}
	}
	return nil
}
