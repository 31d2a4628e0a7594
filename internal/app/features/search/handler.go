// internal/app/features/search/handler.go
package search

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/tenderinsight/hub/internal/app/store/tendermeta"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/cache"
	"github.com/tenderinsight/hub/internal/app/system/gates"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	excerptLen      = 200
	maxResults      = 200
	filtersCacheKey = "search:filter-options"
	filtersCacheTTL = 10 * time.Minute
)

// Handler serves structured tender search. Filters run against the
// Postgres metadata mirror; matching documents are then pulled from
// MongoDB for keyword ranking.
type Handler struct {
	Meta    *metastore.Store
	Tenders *tenderstore.Store
	Gates   *gates.Gatekeeper
	Cache   *cache.Cache
	Log     *zap.Logger
}

func NewHandler(meta *metastore.Store, tenders *tenderstore.Store, gk *gates.Gatekeeper, c *cache.Cache, logger *zap.Logger) *Handler {
	return &Handler{
		Meta:    meta,
		Tenders: tenders,
		Gates:   gk,
		Cache:   c,
		Log:     logger,
	}
}

type searchRequest struct {
	Keywords     string     `json:"keywords"`
	Province     string     `json:"province"`
	Buyer        string     `json:"buyer"`
	MinBudget    *float64   `json:"min_budget"`
	MaxBudget    *float64   `json:"max_budget"`
	DeadlineFrom *time.Time `json:"deadline_from"`
	DeadlineTo   *time.Time `json:"deadline_to"`
}

// searchResult is one ranked hit. Relevance is the fraction of keyword
// terms found in the tender description, 1.0 when no keywords were
// given.
type searchResult struct {
	TenderID  string     `json:"tender_id"`
	Title     string     `json:"title"`
	Buyer     string     `json:"buyer,omitempty"`
	Province  string     `json:"province,omitempty"`
	BudgetMin *float64   `json:"budget_min,omitempty"`
	BudgetMax *float64   `json:"budget_max,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Summary   string     `json:"summary,omitempty"`
	Excerpt   string     `json:"excerpt"`
	Relevance float64    `json:"relevance"`
}

// HandleSearch handles POST /api/search/tenders. Free-tier teams burn
// one unit of their weekly search quota per call.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	team, ok := h.Gates.TeamFromRequest(w, r)
	if !ok {
		return
	}
	if !h.Gates.AllowSearch(w, r, team) {
		return
	}

	var req searchRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "tender search")
	defer cancel()

	rows, err := h.Meta.Find(ctx, metastore.Filter{
		Province:     strings.TrimSpace(req.Province),
		Buyer:        strings.TrimSpace(req.Buyer),
		MinBudget:    req.MinBudget,
		MaxBudget:    req.MaxBudget,
		DeadlineFrom: req.DeadlineFrom,
		DeadlineTo:   req.DeadlineTo,
		Limit:        maxResults,
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "search metadata", err)
		return
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.TenderID)
	}
	docs, err := h.Tenders.GetByIDs(ctx, ids)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load tender documents", err)
		return
	}

	terms := splitTerms(req.Keywords)
	results := make([]searchResult, 0, len(rows))
	for _, row := range rows {
		doc, ok := docs[row.TenderID]
		if !ok {
			continue
		}
		rel := relevance(doc.Title+" "+doc.Description, terms)
		if len(terms) > 0 && rel == 0 {
			continue
		}
		results = append(results, searchResult{
			TenderID:  doc.TenderID,
			Title:     doc.Title,
			Buyer:     doc.Buyer,
			Province:  doc.Province,
			BudgetMin: doc.BudgetMin,
			BudgetMax: doc.BudgetMax,
			Deadline:  doc.Deadline,
			Summary:   doc.Summary,
			Excerpt:   doc.Excerpt(excerptLen),
			Relevance: rel,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})

	httpjson.OK(w, map[string]interface{}{
		"results": results,
		"total":   len(results),
	})
}

// ServeFilters handles GET /api/search/filters: the distinct values and
// ranges available for filter UIs. Cached briefly since it scans the
// whole metadata table.
func (h *Handler) ServeFilters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "search filter options")
	defer cancel()

	var opts metastore.FilterOptions
	if h.Cache.Get(ctx, filtersCacheKey, &opts) {
		httpjson.OK(w, opts)
		return
	}

	opts, err := h.Meta.Options(ctx)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load filter options", err)
		return
	}
	h.Cache.Set(ctx, filtersCacheKey, opts, filtersCacheTTL)
	httpjson.OK(w, opts)
}

// splitTerms folds and tokenizes the keyword string.
func splitTerms(keywords string) []string {
	fields := strings.Fields(text.Fold(keywords))
	terms := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			terms = append(terms, f)
		}
	}
	return terms
}

// relevance returns the fraction of terms present in the text. With no
// terms every document is equally relevant.
func relevance(body string, terms []string) float64 {
	if len(terms) == 0 {
		return 1
	}
	folded := text.Fold(body)
	hits := 0
	for _, term := range terms {
		if strings.Contains(folded, term) {
			hits++
		}
	}
	return float64(hits) / float64(len(terms))
}
