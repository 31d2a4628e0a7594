package workspace_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tenderinsight/hub/internal/app/features/workspace"
	"github.com/tenderinsight/hub/internal/app/store/readiness"
	"github.com/tenderinsight/hub/internal/app/store/tenders"
	"github.com/tenderinsight/hub/internal/app/store/workspace"
	"github.com/tenderinsight/hub/internal/domain/models"
	"github.com/tenderinsight/hub/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*workspace.Handler, *testutil.Fixtures) {
	db := testutil.SetupTestDB(t)
	h := workspace.NewHandler(
		workspacestore.New(db),
		tenderstore.New(db),
		readinessstore.New(db),
		nil,
		zap.NewNop(),
	)
	return h, testutil.NewFixtures(t, db)
}

func TestHandleTrack(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f.CreateTender(ctx, "ocds-200", "Road maintenance", "Gauteng")

	req := testutil.NewAuthenticatedRequest("POST", "/api/workspace",
		strings.NewReader(`{"tender_id":"ocds-200"}`), "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.HandleTrack(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	var item models.WorkspaceItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if item.Status != models.WorkspaceStatusPending {
		t.Errorf("Status = %q, want pending", item.Status)
	}
	if item.TeamID != "team-1" || item.TenderID != "ocds-200" {
		t.Errorf("item keys = %s/%s", item.TeamID, item.TenderID)
	}

	// Tracking the same tender again is rejected.
	dup := testutil.NewAuthenticatedRequest("POST", "/api/workspace",
		strings.NewReader(`{"tender_id":"ocds-200"}`), "team-1", "user-1")
	dupRec := httptest.NewRecorder()
	h.HandleTrack(dupRec, dup)
	if dupRec.Code != http.StatusBadRequest {
		t.Errorf("duplicate status = %d, want %d", dupRec.Code, http.StatusBadRequest)
	}
}

func TestHandleTrack_UnknownTender(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewAuthenticatedRequest("POST", "/api/workspace",
		strings.NewReader(`{"tender_id":"ocds-none"}`), "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.HandleTrack(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestServeList_EnrichedAndSorted(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	f.CreateTender(ctx, "ocds-2", "School catering", "Limpopo")
	f.CreateTender(ctx, "ocds-3", "IT support", "Western Cape")
	f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)
	f.CreateWorkspaceItem(ctx, "team-1", "ocds-2", models.WorkspaceStatusInterested)
	f.CreateWorkspaceItem(ctx, "team-1", "ocds-3", models.WorkspaceStatusPending)
	f.CreateReadinessScore(ctx, "team-1", "ocds-2", 85)
	f.CreateReadinessScore(ctx, "team-1", "ocds-1", 40)

	req := testutil.NewAuthenticatedRequest("GET", "/api/workspace", nil, "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []struct {
			TenderID   string `json:"tender_id"`
			Title      string `json:"title"`
			MatchScore *int   `json:"match_score"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("total = %d, want 3", resp.Total)
	}

	// Scored items lead, best match first; the unscored item is last.
	if resp.Items[0].TenderID != "ocds-2" || resp.Items[1].TenderID != "ocds-1" {
		t.Errorf("order = %s, %s; want ocds-2, ocds-1", resp.Items[0].TenderID, resp.Items[1].TenderID)
	}
	if resp.Items[2].MatchScore != nil {
		t.Errorf("unscored item has match_score %d", *resp.Items[2].MatchScore)
	}
	if resp.Items[0].Title != "School catering" {
		t.Errorf("Title = %q, want enriched tender title", resp.Items[0].Title)
	}
}

func TestServeList_StatusFilter(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	f.CreateTender(ctx, "ocds-2", "School catering", "Limpopo")
	f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)
	f.CreateWorkspaceItem(ctx, "team-1", "ocds-2", models.WorkspaceStatusInterested)

	req := testutil.NewAuthenticatedRequest("GET", "/api/workspace?status=interested", nil, "team-1", "user-1")
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}

	bad := testutil.NewAuthenticatedRequest("GET", "/api/workspace?status=bogus", nil, "team-1", "user-1")
	badRec := httptest.NewRecorder()
	h.ServeList(badRec, bad)
	if badRec.Code != http.StatusBadRequest {
		t.Errorf("bogus filter status = %d, want %d", badRec.Code, http.StatusBadRequest)
	}
}

func TestHandleStatus(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	item := f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)

	req := testutil.NewAuthenticatedRequest("PATCH", "/api/workspace/"+item.ID+"/status",
		strings.NewReader(`{"status":"interested"}`), "team-1", "user-1")
	req = testutil.WithChiURLParam(req, "id", item.ID)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.WorkspaceItem
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if updated.Status != models.WorkspaceStatusInterested {
		t.Errorf("Status = %q, want interested", updated.Status)
	}
	if updated.UpdatedBy != "user-1" {
		t.Errorf("UpdatedBy = %q, want user-1", updated.UpdatedBy)
	}
}

func TestHandleStatus_InvalidTransition(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	item := f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)

	// pending cannot jump straight to won.
	req := testutil.NewAuthenticatedRequest("PATCH", "/api/workspace/"+item.ID+"/status",
		strings.NewReader(`{"status":"won"}`), "team-1", "user-1")
	req = testutil.WithChiURLParam(req, "id", item.ID)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestHandleStatus_OtherTeamHidden(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	item := f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)

	req := testutil.NewAuthenticatedRequest("PATCH", "/api/workspace/"+item.ID+"/status",
		strings.NewReader(`{"status":"interested"}`), "team-2", "user-9")
	req = testutil.WithChiURLParam(req, "id", item.ID)
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleNote_Sanitized(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	item := f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)

	body := `{"content":"Check <b>pricing</b><script>alert(1)</script>"}`
	req := testutil.NewAuthenticatedRequest("POST", "/api/workspace/"+item.ID+"/notes",
		strings.NewReader(body), "team-1", "user-1")
	req = testutil.WithChiURLParam(req, "id", item.ID)
	rec := httptest.NewRecorder()
	h.HandleNote(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.WorkspaceItem
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(updated.Notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(updated.Notes))
	}
	note := updated.Notes[0]
	if strings.Contains(note.Content, "script") {
		t.Errorf("note content kept script tag: %q", note.Content)
	}
	if !strings.Contains(note.Content, "<b>pricing</b>") {
		t.Errorf("note content lost safe formatting: %q", note.Content)
	}
	if note.CreatedBy != "user-1" {
		t.Errorf("CreatedBy = %q, want user-1", note.CreatedBy)
	}
}

func TestHandleTask(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	item := f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)

	body := `{"description":"Draft pricing schedule","assigned_to":"user-2"}`
	req := testutil.NewAuthenticatedRequest("POST", "/api/workspace/"+item.ID+"/tasks",
		strings.NewReader(body), "team-1", "user-1")
	req = testutil.WithChiURLParam(req, "id", item.ID)
	rec := httptest.NewRecorder()
	h.HandleTask(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var updated models.WorkspaceItem
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(updated.Tasks) != 1 {
		t.Fatalf("tasks = %d, want 1", len(updated.Tasks))
	}
	task := updated.Tasks[0]
	if task.Status != models.TaskStatusPending {
		t.Errorf("Status = %q, want pending default", task.Status)
	}
	if task.AssignedTo != "user-2" {
		t.Errorf("AssignedTo = %q", task.AssignedTo)
	}
}

func TestHandleDelete(t *testing.T) {
	h, f := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateTender(ctx, "ocds-1", "Bridge repair", "Gauteng")
	item := f.CreateWorkspaceItem(ctx, "team-1", "ocds-1", models.WorkspaceStatusPending)

	req := testutil.NewAuthenticatedRequest("DELETE", "/api/workspace/"+item.ID, nil, "team-1", "user-1")
	req = testutil.WithChiURLParam(req, "id", item.ID)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	again := testutil.NewAuthenticatedRequest("DELETE", "/api/workspace/"+item.ID, nil, "team-1", "user-1")
	again = testutil.WithChiURLParam(again, "id", item.ID)
	againRec := httptest.NewRecorder()
	h.HandleDelete(againRec, again)
	if againRec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", againRec.Code, http.StatusNotFound)
	}
}
