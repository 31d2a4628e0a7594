// internal/app/features/tenders/handler.go
package tenders

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/csvutil"
	"github.com/tenderinsight/hub/internal/app/system/gates"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/ingest"
	"github.com/tenderinsight/hub/internal/app/system/limits"
	"github.com/tenderinsight/hub/internal/app/system/ocds"
	"github.com/tenderinsight/hub/internal/app/system/paging"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Handler serves the ingested tender corpus and the upstream OCDS
// pass-through.
type Handler struct {
	Tenders *tenderstore.Store
	OCDS    *ocds.Client
	Ingest  *ingest.Service
	Gates   *gates.Gatekeeper
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(tenders *tenderstore.Store, client *ocds.Client, ing *ingest.Service, gk *gates.Gatekeeper, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Tenders: tenders,
		OCDS:    client,
		Ingest:  ing,
		Gates:   gk,
		Audit:   audit,
		Log:     logger,
	}
}

// ServeList handles GET /api/tenders: keyset-paged browse of the
// ingested corpus, ordered by tender id, with optional province and
// buyer filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	before, after := paging.Cursors(r)

	filter := bson.M{}
	if window := paging.KeysetWindow(before, after); window != nil {
		for k, v := range window {
			filter[k] = v
		}
	}
	if p := strings.TrimSpace(query.Get(r, "province")); p != "" {
		filter["province"] = p
	}
	if b := strings.TrimSpace(query.Get(r, "buyer")); b != "" {
		filter["buyer"] = b
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list tenders")
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: paging.SortOrder(before)}}).
		SetLimit(paging.LimitPlusOne())
	rows, err := h.Tenders.Find(ctx, filter, opts)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list tenders", err)
		return
	}

	page := paging.TrimPage(&rows, before, after)
	if before != "" {
		paging.Reverse(rows)
	}

	var prevCursor, nextCursor string
	if len(rows) > 0 {
		prevCursor = rows[0].TenderID
		nextCursor = rows[len(rows)-1].TenderID
	}

	httpjson.OK(w, map[string]interface{}{
		"tenders":     rows,
		"has_prev":    page.HasPrev,
		"has_next":    page.HasNext,
		"prev_cursor": prevCursor,
		"next_cursor": nextCursor,
	})
}

// HandleIngest handles POST /api/tenders/ingest: direct push of OCDS
// releases, either a bare release array or an object with a "releases"
// array, matching the two shapes publishers emit. Parseable releases
// are upserted; the rest are counted as skipped.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limits.MaxIngestBody))
	if err != nil {
		httpjson.BadRequest(w, "could not read request body")
		return
	}

	releases, ok := ingest.ReleasesFromJSON(raw)
	if !ok {
		httpjson.BadRequest(w, "body must be a release array or {\"releases\": [...]}")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "ingest push")
	defer cancel()

	var upserted, skipped int
	for _, release := range releases {
		if _, err := h.Ingest.UpsertRelease(ctx, release); err != nil {
			if ingest.IsUnparseable(err) {
				skipped++
				continue
			}
			httpjson.ServerError(w, h.Log, "upsert pushed release", err)
			return
		}
		upserted++
	}

	httpjson.OK(w, map[string]interface{}{
		"received": len(releases),
		"upserted": upserted,
		"skipped":  skipped,
	})
}

type syncRequest struct {
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

// HandleSync handles POST /api/tenders/sync: an on-demand pull of the
// upstream window. Runs synchronously; the scheduled worker covers
// steady-state ingestion.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "sync trigger")
	defer cancel()

	res, err := h.Ingest.SyncWindow(ctx, req.DateFrom, req.DateTo)
	if err != nil {
		httpjson.ServerError(w, h.Log, "sync window", err)
		return
	}
	httpjson.OK(w, res)
}

// HandleExport handles GET /api/tenders/export: the filtered corpus as
// a CSV attachment. Exports are a pro-tier feature.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	team, ok := h.Gates.TeamFromRequest(w, r)
	if !ok {
		return
	}
	if !h.Gates.AllowExports(w, r, team) {
		return
	}

	filter := bson.M{}
	if p := strings.TrimSpace(query.Get(r, "province")); p != "" {
		filter["province"] = p
	}
	if b := strings.TrimSpace(query.Get(r, "buyer")); b != "" {
		filter["buyer"] = b
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "tender export")
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(csvutil.MaxExportRows))
	rows, err := h.Tenders.Find(ctx, filter, opts)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load tenders for export", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tenders.csv"`)
	n, err := csvutil.WriteReleases(w, rows)
	if err != nil {
		// Headers are gone; just log.
		h.Log.Warn("csv export aborted", zap.Error(err))
		return
	}
	h.Audit.ExportProduced(ctx, team.ID, "csv", n)
}

// ServeOCDSReleases handles GET /api/OCDSReleases: a pass-through to
// the upstream releases endpoint with paging metadata and links.
func (h *Handler) ServeOCDSReleases(w http.ResponseWriter, r *http.Request) {
	q := ocds.Query{
		PageNumber: intParam(query.Get(r, "PageNumber"), 1),
		PageSize:   intParam(query.Get(r, "PageSize"), paging.PageSize),
		DateFrom:   query.Get(r, "dateFrom"),
		DateTo:     query.Get(r, "dateTo"),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "ocds pass-through")
	defer cancel()

	page, err := h.OCDS.Fetch(ctx, q)
	if err != nil {
		httpjson.Error(w, http.StatusBadGateway, "upstream OCDS API unavailable", err.Error())
		return
	}

	releases := make([]json.RawMessage, 0, len(page.Releases))
	for _, rel := range page.Releases {
		releases = append(releases, json.RawMessage(rel.Raw))
	}

	links := map[string]string{"self": releasesLink(q.PageNumber, q.PageSize)}
	if page.HasNext(q) {
		links["next"] = releasesLink(q.PageNumber+1, q.PageSize)
	}
	if q.PageNumber > 1 {
		links["prev"] = releasesLink(q.PageNumber-1, q.PageSize)
	}

	httpjson.OK(w, map[string]interface{}{
		"releases": releases,
		"meta": map[string]interface{}{
			"total":      page.Total,
			"page":       q.PageNumber,
			"pageSize":   q.PageSize,
			"hasNext":    page.HasNext(q),
			"totalPages": page.TotalPages(q),
		},
		"links": links,
	})
}

// ServeOCDSRelease handles GET /api/OCDSReleases/{ocid}: one upstream
// release, 404 passed through.
func (h *Handler) ServeOCDSRelease(w http.ResponseWriter, r *http.Request) {
	ocid := chi.URLParam(r, "ocid")
	if ocid == "" {
		httpjson.BadRequest(w, "ocid is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "ocds release")
	defer cancel()

	raw, err := h.OCDS.FetchByOCID(ctx, ocid)
	if err != nil {
		if ocds.IsNotFound(err) {
			httpjson.NotFound(w, "release not found")
			return
		}
		httpjson.Error(w, http.StatusBadGateway, "upstream OCDS API unavailable", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// ServeGetTender handles GET /api/tenders/{tender_id}: one ingested
// tender document.
func (h *Handler) ServeGetTender(w http.ResponseWriter, r *http.Request) {
	tenderID := chi.URLParam(r, "tender_id")
	if tenderID == "" {
		httpjson.BadRequest(w, "tender_id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get tender")
	defer cancel()

	tender, err := h.Tenders.GetByID(ctx, tenderID)
	if err != nil {
		if err == tenderstore.ErrNotFound {
			httpjson.NotFound(w, "tender not found")
			return
		}
		httpjson.ServerError(w, h.Log, "load tender", err)
		return
	}
	httpjson.OK(w, tender)
}

func releasesLink(page, size int) string {
	return fmt.Sprintf("/api/OCDSReleases?PageNumber=%d&PageSize=%d", page, size)
}

func intParam(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
