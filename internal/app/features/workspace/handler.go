// internal/app/features/workspace/handler.go
package workspace

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tenderinsight/hub/internal/app/store/readiness"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/store/workspace"
	"github.com/tenderinsight/hub/internal/app/system/auditlog"
	"github.com/tenderinsight/hub/internal/app/system/auth"
	"github.com/tenderinsight/hub/internal/app/system/htmlsanitize"
	"github.com/tenderinsight/hub/internal/app/system/httpjson"
	"github.com/tenderinsight/hub/internal/app/system/timeouts"
	"github.com/tenderinsight/hub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler manages a team's tracked tenders: tracking, status moves,
// notes, and tasks.
type Handler struct {
	Items   *workspacestore.Store
	Tenders *tenderstore.Store
	Scores  *readinessstore.Store
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

func NewHandler(items *workspacestore.Store, tenders *tenderstore.Store, scores *readinessstore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Items:   items,
		Tenders: tenders,
		Scores:  scores,
		Audit:   audit,
		Log:     logger,
	}
}

type trackRequest struct {
	TenderID string `json:"tender_id"`
}

// HandleTrack handles POST /api/workspace: start tracking a tender.
// New items enter the pipeline as pending.
func (h *Handler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req trackRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.TenderID == "" {
		httpjson.BadRequest(w, "tender_id is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "track tender")
	defer cancel()

	if _, err := h.Tenders.GetByID(ctx, req.TenderID); err != nil {
		if err == tenderstore.ErrNotFound {
			httpjson.NotFound(w, "tender not found")
			return
		}
		httpjson.ServerError(w, h.Log, "load tender", err)
		return
	}

	item, err := h.Items.Add(ctx, models.WorkspaceItem{
		TenderID: req.TenderID,
		TeamID:   ident.TeamID,
		Notes:    []models.TenderNote{},
		Tasks:    []models.TenderTask{},
	})
	if err != nil {
		if err == workspacestore.ErrDuplicate {
			httpjson.BadRequest(w, "tender is already tracked by this team")
			return
		}
		httpjson.ServerError(w, h.Log, "track tender", err)
		return
	}

	h.Audit.TenderTracked(ctx, r, ident.TeamID, ident.UserID, req.TenderID)
	httpjson.Created(w, item)
}

// listEntry is a workspace item enriched with tender context and the
// team's stored readiness score, when one exists.
type listEntry struct {
	models.WorkspaceItem

	Title          string     `json:"title"`
	Buyer          string     `json:"buyer,omitempty"`
	Province       string     `json:"province,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	MatchScore     *int       `json:"match_score,omitempty"`
	Recommendation string     `json:"recommendation,omitempty"`
}

// ServeList handles GET /api/workspace. Items are enriched with tender
// details and readiness scores, and ordered best match first; items
// without a score sort after scored ones. An optional ?status= query
// narrows the list to one pipeline stage.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !models.ValidWorkspaceStatus(status) {
		httpjson.BadRequest(w, "unknown status filter")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list workspace")
	defer cancel()

	items, err := h.Items.ByTeam(ctx, ident.TeamID, status)
	if err != nil {
		httpjson.ServerError(w, h.Log, "list workspace items", err)
		return
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.TenderID)
	}
	tenders, err := h.Tenders.GetByIDs(ctx, ids)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load tracked tenders", err)
		return
	}
	scores, err := h.Scores.ByTeam(ctx, ident.TeamID)
	if err != nil {
		httpjson.ServerError(w, h.Log, "load readiness scores", err)
		return
	}

	entries := make([]listEntry, 0, len(items))
	for _, it := range items {
		e := listEntry{WorkspaceItem: it}
		if t, ok := tenders[it.TenderID]; ok {
			e.Title = t.Title
			e.Buyer = t.Buyer
			e.Province = t.Province
			e.Deadline = t.Deadline
			e.Summary = t.Summary
		}
		if sc, ok := scores[it.TenderID]; ok {
			v := sc.SuitabilityScore
			e.MatchScore = &v
			e.Recommendation = sc.Recommendation
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].MatchScore, entries[j].MatchScore
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
		"items": entries,
		"total": len(entries),
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleStatus handles PATCH /api/workspace/{id}/status, moving an item
// through the tracking pipeline.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req statusRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.Status == "" {
		httpjson.BadRequest(w, "status is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update workspace status")
	defer cancel()

	item, ok := h.ownedItem(ctx, w, chi.URLParam(r, "id"), ident.TeamID)
	if !ok {
		return
	}
	from := item.Status

	updated, err := h.Items.UpdateStatus(ctx, item.ID, req.Status, ident.UserID)
	if err != nil {
		switch err {
		case workspacestore.ErrInvalidStatus:
			httpjson.BadRequest(w, "unknown status")
		case workspacestore.ErrInvalidTransition:
			httpjson.BadRequest(w, "status change from "+from+" to "+req.Status+" is not allowed")
		case workspacestore.ErrNotFound:
			httpjson.NotFound(w, "workspace item not found")
		default:
			httpjson.ServerError(w, h.Log, "update workspace status", err)
		}
		return
	}

	h.Audit.StatusMoved(ctx, r, ident.TeamID, ident.UserID, updated.TenderID, from, updated.Status)
	httpjson.OK(w, updated)
}

type noteRequest struct {
	Content string `json:"content"`
}

// HandleNote handles POST /api/workspace/{id}/notes. Note content is
// HTML-sanitized before storage.
func (h *Handler) HandleNote(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req noteRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	content := strings.TrimSpace(htmlsanitize.Sanitize(req.Content))
	if content == "" {
		httpjson.BadRequest(w, "content is required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add workspace note")
	defer cancel()

	item, ok := h.ownedItem(ctx, w, chi.URLParam(r, "id"), ident.TeamID)
	if !ok {
		return
	}

	updated, err := h.Items.AddNote(ctx, item.ID, models.TenderNote{
		Content:   content,
		CreatedBy: ident.UserID,
	})
	if err != nil {
		httpjson.ServerError(w, h.Log, "add workspace note", err)
		return
	}
	httpjson.Created(w, updated)
}

type taskRequest struct {
	Description string     `json:"description"`
	AssignedTo  string     `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status"`
}

// HandleTask handles POST /api/workspace/{id}/tasks.
func (h *Handler) HandleTask(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req taskRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	description := strings.TrimSpace(htmlsanitize.StripTags(req.Description))
	if description == "" {
		httpjson.BadRequest(w, "description is required")
		return
	}
	if req.Status != "" && !models.ValidTaskStatus(req.Status) {
		httpjson.BadRequest(w, "unknown task status")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add workspace task")
	defer cancel()

	item, ok := h.ownedItem(ctx, w, chi.URLParam(r, "id"), ident.TeamID)
	if !ok {
		return
	}

	updated, err := h.Items.AddTask(ctx, item.ID, models.TenderTask{
		Description: description,
		AssignedTo:  strings.TrimSpace(req.AssignedTo),
		DueDate:     req.DueDate,
		Status:      req.Status,
		CreatedBy:   ident.UserID,
	})
	if err != nil {
		if err == workspacestore.ErrInvalidStatus {
			httpjson.BadRequest(w, "unknown task status")
			return
		}
		httpjson.ServerError(w, h.Log, "add workspace task", err)
		return
	}
	httpjson.Created(w, updated)
}

// HandleDelete handles DELETE /api/workspace/{id}: stop tracking a
// tender. Notes and tasks go with the item.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete workspace item")
	defer cancel()

	item, ok := h.ownedItem(ctx, w, chi.URLParam(r, "id"), ident.TeamID)
	if !ok {
		return
	}

	if _, err := h.Items.Delete(ctx, item.ID); err != nil {
		httpjson.ServerError(w, h.Log, "delete workspace item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedItem loads the item and verifies it belongs to the caller's
// team. Items of other teams present as not found.
func (h *Handler) ownedItem(ctx context.Context, w http.ResponseWriter, id, teamID string) (models.WorkspaceItem, bool) {
	if id == "" {
		httpjson.BadRequest(w, "item id is required")
		return models.WorkspaceItem{}, false
	}
	item, err := h.Items.GetByID(ctx, id)
	if err != nil {
		if err == workspacestore.ErrNotFound {
			httpjson.NotFound(w, "workspace item not found")
			return models.WorkspaceItem{}, false
		}
		httpjson.ServerError(w, h.Log, "load workspace item", err)
		return models.WorkspaceItem{}, false
	}
	if item.TeamID != teamID {
		httpjson.NotFound(w, "workspace item not found")
		return models.WorkspaceItem{}, false
	}
	return item, true
}
