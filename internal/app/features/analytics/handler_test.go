package analytics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tenderinsight/hub/internal/app/features/analytics"
	"github.com/tenderinsight/hub/internal/app/store/readiness"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/cache"
	"github.com/tenderinsight/hub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*analytics.Handler, *testutil.Fixtures) {
	db := testutil.SetupTestDB(t)
	h := analytics.NewHandler(
		tenderstore.New(db),
		readinessstore.New(db),
		cache.New(nil),
		zap.NewNop(),
	)
	return h, testutil.NewFixtures(t, db)
}

func setBudget(t *testing.T, f *testutil.Fixtures, ctx context.Context, tenderID string, min, max float64) {
	t.Helper()
	_, err := f.DB().Collection("tenders").UpdateByID(ctx, tenderID,
		bson.M{"$set": bson.M{"budget_min": min, "budget_max": max}})
	if err != nil {
		t.Fatalf("setting budget: %v", err)
	}
}

func TestServeSpendByProvince(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Road resurfacing", "Gauteng")
	f.CreateTender(ctx, "ocds-2", "Bridge repair", "Gauteng")
	f.CreateTender(ctx, "ocds-3", "School catering", "Limpopo")
	setBudget(t, f, ctx, "ocds-1", 100000, 200000) // midpoint 150000
	setBudget(t, f, ctx, "ocds-2", 50000, 50000)   // midpoint 50000
	setBudget(t, f, ctx, "ocds-3", 10000, 30000)   // midpoint 20000

	req := testutil.NewAuthenticatedRequest("GET", "/api/analytics/spend-by-province", nil, "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.ServeSpendByProvince(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Rows []struct {
			Key         string   `json:"key"`
			TenderCount int      `json:"tender_count"`
			TotalSpend  *float64 `json:"total_spend"`
			AvgSpend    *float64 `json:"avg_spend"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(resp.Rows) != 2 {
		t.Fatalf("rows = %d, want 2: %s", len(resp.Rows), rec.Body.String())
	}

	// Gauteng outspends Limpopo and sorts first.
	top := resp.Rows[0]
	if top.Key != "Gauteng" {
		t.Errorf("top row key = %q, want Gauteng", top.Key)
	}
	if top.TenderCount != 2 {
		t.Errorf("TenderCount = %d, want 2", top.TenderCount)
	}
	if top.TotalSpend == nil || *top.TotalSpend != 200000 {
		t.Errorf("TotalSpend = %v, want 200000", top.TotalSpend)
	}
	if top.AvgSpend == nil || *top.AvgSpend != 100000 {
		t.Errorf("AvgSpend = %v, want 100000", top.AvgSpend)
	}
}

func TestServeSpendByBuyer_BadDate(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/api/analytics/spend-by-buyer?date_from=nonsense", nil, "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.ServeSpendByBuyer(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeTrends(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Road resurfacing", "Gauteng")
	f.CreateTender(ctx, "ocds-2", "Bridge repair", "Gauteng")
	setBudget(t, f, ctx, "ocds-1", 100000, 200000)

	req := testutil.NewAuthenticatedRequest("GET", "/api/analytics/tender-trends?interval=month", nil, "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.ServeTrends(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Interval string `json:"interval"`
		Rows     []struct {
			TenderCount int `json:"tender_count"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Interval != "month" {
		t.Errorf("interval = %q", resp.Interval)
	}
	// Both fixtures were created just now, so they land in one bucket.
	if len(resp.Rows) != 1 || resp.Rows[0].TenderCount != 2 {
		t.Errorf("rows = %+v, want one bucket of 2", resp.Rows)
	}
}

func TestServeTrends_BadInterval(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/api/analytics/tender-trends?interval=decade", nil, "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.ServeTrends(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeEnrichedReleases(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Road resurfacing", "Gauteng")
	f.CreateTender(ctx, "ocds-2", "Bridge repair", "Gauteng")
	f.CreateReadinessScore(ctx, "team-1", "ocds-2", 75)

	req := testutil.NewAuthenticatedRequest("GET", "/api/analytics/enriched-releases?province=Gauteng", nil, "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.ServeEnrichedReleases(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Releases []struct {
			TenderID         string `json:"tender_id"`
			SuitabilityScore *int   `json:"suitability_score"`
		} `json:"releases"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	// The scored tender leads.
	if resp.Releases[0].TenderID != "ocds-2" {
		t.Errorf("first release = %q, want ocds-2", resp.Releases[0].TenderID)
	}
	if resp.Releases[0].SuitabilityScore == nil || *resp.Releases[0].SuitabilityScore != 75 {
		t.Errorf("SuitabilityScore = %v, want 75", resp.Releases[0].SuitabilityScore)
	}
	if resp.Releases[1].SuitabilityScore != nil {
		t.Errorf("unscored release carries a score")
	}
}

func TestServeEnrichedReleases_Unauthenticated(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewRequest("GET", "/api/analytics/enriched-releases", nil)
	rec := httptest.NewRecorder()
	h.ServeEnrichedReleases(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
