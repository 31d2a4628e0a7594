// internal/app/features/analytics/handler.go
package analytics

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tenderinsight/hub/internal/app/store/readiness"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/auth"
	"github.com/tenderinsight/hub/internal/app/system/cache"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	defaultTopN       = 10
	maxTopN           = 50
	defaultMonthsBack = 12
	spendCacheTTL     = 5 * time.Minute
)

// Handler serves spend analytics computed by aggregation over the
// ingested tender corpus. Budget figures use the midpoint of each
// tender's budget range; tenders without budgets still count.
type Handler struct {
	Tenders *tenderstore.Store
	Scores  *readinessstore.Store
	Cache   *cache.Cache
	Log     *zap.Logger
}

func NewHandler(tenders *tenderstore.Store, scores *readinessstore.Store, c *cache.Cache, logger *zap.Logger) *Handler {
	return &Handler{
		Tenders: tenders,
		Scores:  scores,
		Cache:   c,
		Log:     logger,
	}
}

// spendRow is one group in a spend aggregation.
type spendRow struct {
	Key         string   `bson:"_id" json:"key"`
	TenderCount int      `bson:"tender_count" json:"tender_count"`
	TotalSpend  *float64 `bson:"total_spend" json:"total_spend"`
	AvgSpend    *float64 `bson:"avg_spend" json:"avg_spend"`
}

// ServeSpendByBuyer handles GET /api/analytics/spend-by-buyer.
func (h *Handler) ServeSpendByBuyer(w http.ResponseWriter, r *http.Request) {
	h.serveSpend(w, r, "buyer")
}

// ServeSpendByProvince handles GET /api/analytics/spend-by-province.
func (h *Handler) ServeSpendByProvince(w http.ResponseWriter, r *http.Request) {
	h.serveSpend(w, r, "province")
}

func (h *Handler) serveSpend(w http.ResponseWriter, r *http.Request, groupField string) {
	q := r.URL.Query()
	topN := intParam(q.Get("limit"), defaultTopN)
	if topN > maxTopN {
		topN = maxTopN
	}
	from, to, ok := dateWindow(w, q.Get("date_from"), q.Get("date_to"))
	if !ok {
		return
	}

	cacheKey := "analytics:spend:" + groupField + ":" + q.Encode()
	var cached []spendRow
	if h.Cache.Get(r.Context(), cacheKey, &cached) {
		httpjson.OK(w, map[string]interface{}{"rows": cached, "group_by": groupField})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "spend aggregation")
	defer cancel()

	pipeline := []bson.M{
		{"$match": releaseDateMatch(from, to, bson.M{groupField: bson.M{"$ne": ""}})},
		{"$addFields": bson.M{"avg_budget": bson.M{"$avg": bson.A{"$budget_min", "$budget_max"}}}},
		{"$group": bson.M{
			"_id":          "$" + groupField,
			"tender_count": bson.M{"$sum": 1},
			"total_spend":  bson.M{"$sum": "$avg_budget"},
			"avg_spend":    bson.M{"$avg": "$avg_budget"},
		}},
		{"$sort": bson.M{"total_spend": -1}},
		{"$limit": topN},
	}

	var rows []spendRow
	if err := h.Tenders.Aggregate(ctx, pipeline, &rows); err != nil {
		httpjson.ServerError(w, h.Log, "spend aggregation", err)
		return
	}
	if rows == nil {
		rows = []spendRow{}
	}

	h.Cache.Set(ctx, cacheKey, rows, spendCacheTTL)
	httpjson.OK(w, map[string]interface{}{"rows": rows, "group_by": groupField})
}

// trendRow is one interval bucket in the trend aggregation.
type trendRow struct {
	Period      time.Time `bson:"_id" json:"period"`
	TenderCount int       `bson:"tender_count" json:"tender_count"`
	AvgBudget   *float64  `bson:"avg_budget" json:"avg_budget"`
}

var trendIntervals = map[string]bool{
	"day": true, "week": true, "month": true, "quarter": true, "year": true,
}

// ServeTrends handles GET /api/analytics/tender-trends: tender volume
// and average budget per interval over a trailing window of months.
func (h *Handler) ServeTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	interval := strings.ToLower(strings.TrimSpace(q.Get("interval")))
	if interval == "" {
		interval = "month"
	}
	if !trendIntervals[interval] {
		httpjson.BadRequest(w, "interval must be one of day, week, month, quarter, year")
		return
	}
	monthsBack := intParam(q.Get("months_back"), defaultMonthsBack)
	since := time.Now().UTC().AddDate(0, -monthsBack, 0)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "trend aggregation")
	defer cancel()

	pipeline := []bson.M{
		{"$addFields": bson.M{
			"release_date": bson.M{"$ifNull": bson.A{"$date", "$created_at"}},
			"avg_budget":   bson.M{"$avg": bson.A{"$budget_min", "$budget_max"}},
		}},
		{"$match": bson.M{"release_date": bson.M{"$gte": since}}},
		{"$group": bson.M{
			"_id": bson.M{"$dateTrunc": bson.M{
				"date": "$release_date",
				"unit": interval,
			}},
			"tender_count": bson.M{"$sum": 1},
			"avg_budget":   bson.M{"$avg": "$avg_budget"},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	var rows []trendRow
	if err := h.Tenders.Aggregate(ctx, pipeline, &rows); err != nil {
		httpjson.ServerError(w, h.Log, "trend aggregation", err)
		return
	}
	if rows == nil {
		rows = []trendRow{}
	}
	httpjson.OK(w, map[string]interface{}{
		"interval":    interval,
		"months_back": monthsBack,
		"rows":        rows,
	})
}

// enrichedRelease couples a tender with the calling team's stored
// readiness assessment.
type enrichedRelease struct {
	models.Tender

	SuitabilityScore *int                   `json:"suitability_score,omitempty"`
	Recommendation   string                 `json:"recommendation,omitempty"`
	Checklist        []models.ChecklistItem `json:"checklist,omitempty"`
}

// ServeEnrichedReleases handles GET /api/analytics/enriched-releases: a
// filtered tender list joined with the team's readiness scores, scored
// tenders first.
func (h *Handler) ServeEnrichedReleases(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	q := r.URL.Query()
	filter := bson.M{}
	if p := strings.TrimSpace(q.Get("province")); p != "" {
		filter["province"] = p
	}
	if b := strings.TrimSpace(q.Get("buyer")); b != "" {
		filter["buyer"] = b
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "enriched releases")
	defer cancel()

	tenders, err := h.Tenders.Find(ctx, filter)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load tenders", err)
		return
	}
	scores, err := h.Scores.ByTeam(ctx, ident.TeamID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load readiness scores", err)
		return
	}

	releases := make([]enrichedRelease, 0, len(tenders))
	for _, t := range tenders {
		e := enrichedRelease{Tender: t}
		if sc, ok := scores[t.TenderID]; ok {
			v := sc.SuitabilityScore
			e.SuitabilityScore = &v
			e.Recommendation = sc.Recommendation
			e.Checklist = sc.Checklist
		}
		releases = append(releases, e)
	}
	sort.SliceStable(releases, func(i, j int) bool {
		a, b := releases[i].SuitabilityScore, releases[j].SuitabilityScore
		switch {
		case a != nil && b != nil:
			return *a > *b
		case a != nil:
			return true
		default:
			return false
		}
	})

	httpjson.OK(w, map[string]interface{}{
		"releases": releases,
		"total":    len(releases),
	})
}

// releaseDateMatch builds a $match filter over the release date window.
// Extra constraints are merged in.
func releaseDateMatch(from, to *time.Time, extra bson.M) bson.M {
	match := bson.M{}
	for k, v := range extra {
		match[k] = v
	}
	if from != nil || to != nil {
		window := bson.M{}
		if from != nil {
			window["$gte"] = *from
		}
		if to != nil {
			window["$lte"] = *to
		}
		match["date"] = window
	}
	return match
}

// dateWindow parses optional YYYY-MM-DD bounds, writing a 400 on bad
// input.
func dateWindow(w http.ResponseWriter, fromStr, toStr string) (*time.Time, *time.Time, bool) {
	parse := func(s string) (*time.Time, bool) {
		if s == "" {
			return nil, true
		}
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			httpjson.BadRequest(w, "dates must be YYYY-MM-DD")
			return nil, false
		}
		return &t, true
	}
	from, ok := parse(fromStr)
	if !ok {
		return nil, nil, false
	}
	to, ok := parse(toStr)
	if !ok {
		return nil, nil, false
	}
	return from, to, true
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
